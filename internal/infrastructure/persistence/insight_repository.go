package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/insight"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInsightRepository implements insight.FactRepository using GORM.
// Facts are loaded fresh per call; the engine never reads cached state.
type GormInsightRepository struct {
	db *gorm.DB
}

// NewGormInsightRepository creates a new GormInsightRepository
func NewGormInsightRepository(db *gorm.DB) *GormInsightRepository {
	return &GormInsightRepository{db: db}
}

type invoiceFactRow struct {
	ID         uuid.UUID
	Number     string
	Currency   string
	Status     billing.InvoiceStatus
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	IssueDate  time.Time
	DueDate    time.Time
	PaidAt     *time.Time
}

// InvoiceFacts returns the reporting set: CUSTOMER invoices that are
// neither draft nor cancelled, with payment sums attached
func (r *GormInsightRepository) InvoiceFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]insight.InvoiceFact, error) {
	return r.invoiceFacts(ctx, tenantID, clientID, false)
}

// IssuedInvoiceFacts returns all non-draft CUSTOMER invoices, including
// cancelled ones
func (r *GormInsightRepository) IssuedInvoiceFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]insight.InvoiceFact, error) {
	return r.invoiceFacts(ctx, tenantID, clientID, true)
}

func (r *GormInsightRepository) invoiceFacts(ctx context.Context, tenantID, clientID uuid.UUID, includeCancelled bool) ([]insight.InvoiceFact, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Select(`invoices.id, invoices.number, invoices.currency, invoices.status, invoices.total,
			COALESCE(p.paid_amount, 0) AS paid_amount,
			invoices.issue_date, invoices.due_date, invoices.paid_at`).
		Joins(`LEFT JOIN (
			SELECT invoice_id, SUM(amount) AS paid_amount
			FROM invoice_payments
			WHERE tenant_id = ?
			GROUP BY invoice_id
		) p ON p.invoice_id = invoices.id`, tenantID).
		Where("invoices.tenant_id = ? AND invoices.client_id = ?", tenantID, clientID).
		Where("invoices.type = ?", billing.InvoiceTypeCustomer).
		Where("invoices.status <> ?", billing.InvoiceStatusDraft)
	if !includeCancelled {
		query = query.Where("invoices.status <> ?", billing.InvoiceStatusCanceled)
	}

	var rows []invoiceFactRow
	if err := query.Order("invoices.issue_date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	facts := make([]insight.InvoiceFact, len(rows))
	for i, row := range rows {
		facts[i] = insight.InvoiceFact{
			ID:         row.ID,
			Number:     row.Number,
			Currency:   row.Currency,
			Status:     row.Status,
			Total:      row.Total,
			PaidAmount: row.PaidAmount,
			IssueDate:  row.IssueDate,
			DueDate:    row.DueDate,
			PaidAt:     row.PaidAt,
		}
	}
	return facts, nil
}

type saleFactRow struct {
	ID       uuid.UUID
	Product  string
	Price    decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	SaleDate time.Time
	Currency string
}

// SaleFacts returns all sales linked to the client
func (r *GormInsightRepository) SaleFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]insight.SaleFact, error) {
	var rows []saleFactRow
	if err := r.db.WithContext(ctx).
		Table("sales").
		Select("id, product, price, discount, total, sale_date, currency").
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("sale_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	facts := make([]insight.SaleFact, len(rows))
	for i, row := range rows {
		facts[i] = insight.SaleFact{
			ID:       row.ID,
			Product:  row.Product,
			Price:    row.Price,
			Discount: row.Discount,
			Total:    row.Total,
			SaleDate: row.SaleDate,
			Currency: row.Currency,
		}
	}
	return facts, nil
}

type paymentFactRow struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    billing.PaymentMethod
	Currency  string
}

// PaymentFacts returns all payments applied to the client's non-draft
// CUSTOMER invoices
func (r *GormInsightRepository) PaymentFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]insight.PaymentFact, error) {
	var rows []paymentFactRow
	if err := r.db.WithContext(ctx).
		Table("invoice_payments").
		Select(`invoice_payments.id, invoice_payments.invoice_id, invoice_payments.amount,
			invoice_payments.paid_at, invoice_payments.method, invoices.currency`).
		Joins("JOIN invoices ON invoices.id = invoice_payments.invoice_id").
		Where("invoice_payments.tenant_id = ?", tenantID).
		Where("invoices.tenant_id = ? AND invoices.client_id = ?", tenantID, clientID).
		Where("invoices.type = ? AND invoices.status <> ?", billing.InvoiceTypeCustomer, billing.InvoiceStatusDraft).
		Order("invoice_payments.paid_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	facts := make([]insight.PaymentFact, len(rows))
	for i, row := range rows {
		facts[i] = insight.PaymentFact{
			ID:        row.ID,
			InvoiceID: row.InvoiceID,
			Amount:    row.Amount,
			PaidAt:    row.PaidAt,
			Method:    row.Method,
			Currency:  row.Currency,
		}
	}
	return facts, nil
}

// ClientFact returns the client identity record, or nil when the client
// does not exist for the tenant
func (r *GormInsightRepository) ClientFact(ctx context.Context, tenantID, clientID uuid.UUID) (*insight.ClientFact, error) {
	var client crm.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, clientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &insight.ClientFact{
		ID:        client.ID,
		Name:      client.Name,
		CreatedAt: client.CreatedAt,
	}, nil
}
