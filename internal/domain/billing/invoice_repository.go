package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindAll finds all invoices for a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByClient finds all invoices for a client within a tenant
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Invoice, error)

	// FindSentDueBefore finds every sent invoice of the tenant whose
	// due date lies before the given instant
	FindSentDueBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// Count counts invoices for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PaymentRepository defines the interface for invoice payment persistence
type PaymentRepository interface {
	// FindByInvoice finds all payments applied to an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]InvoicePayment, error)

	// SumByInvoice returns the total amount paid against an invoice
	SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)

	// Save creates a payment record
	Save(ctx context.Context, payment *InvoicePayment) error
}
