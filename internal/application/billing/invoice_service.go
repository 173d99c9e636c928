package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice lifecycle and payment recording
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, paymentRepo billing.PaymentRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the reference clock, for tests
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// CreateInvoice creates a new draft invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID, clientID uuid.UUID, number string, invoiceType billing.InvoiceType, total decimal.Decimal, currency string, issueDate, dueDate time.Time) (*billing.Invoice, error) {
	if existing, err := s.invoiceRepo.FindByNumber(ctx, tenantID, number); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_NUMBER", "Invoice number already in use: "+number)
	}

	invoice, err := billing.NewInvoice(tenantID, clientID, number, invoiceType, total, currency, issueDate, dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)

	return invoice, nil
}

// GetInvoice returns one invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, tenantID, id)
}

// ListInvoices returns a page of invoices for the tenant
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[billing.Invoice], error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[billing.Invoice]{}, err
	}

	total, err := s.invoiceRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[billing.Invoice]{}, err
	}

	return shared.NewPaginated(invoices, total, filter.Page, filter.PageSize), nil
}

// IssueInvoice transitions a draft invoice to sent
func (s *InvoiceService) IssueInvoice(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Issue(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// CancelInvoice voids an invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// RecordPayment applies a payment to an invoice. When the cumulative paid
// amount reaches the invoice total the invoice is marked paid with the
// payment's date.
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal, paidAt time.Time, method billing.PaymentMethod) (*billing.InvoicePayment, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CountsForReporting() {
		return nil, shared.NewDomainError("INVALID_STATE", "Payments cannot be recorded on "+invoice.Status.String()+" invoices")
	}
	if invoice.Status == billing.InvoiceStatusPaid {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice is already paid")
	}

	payment, err := billing.NewInvoicePayment(tenantID, invoiceID, amount, paidAt, method)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	paid, err := s.paymentRepo.SumByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if paid.GreaterThanOrEqual(invoice.Total) {
		if err := invoice.MarkPaid(paidAt); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return nil, err
		}
		s.logger.Info("invoice settled",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("paid", paid.StringFixed(2)),
		)
	}

	return payment, nil
}

// MarkOverdueInvoices flags sent invoices whose due date has passed.
// Returns the number of invoices transitioned.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) (int, error) {
	now := s.now()

	invoices, err := s.invoiceRepo.FindSentDueBefore(ctx, tenantID, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range invoices {
		invoice := &invoices[i]
		if err := invoice.MarkOverdue(now); err != nil {
			return marked, err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return marked, err
		}
		marked++
	}

	return marked, nil
}

// ListPayments returns the payments applied to an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.InvoicePayment, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByInvoice(ctx, tenantID, invoiceID)
}
