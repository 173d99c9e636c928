// Package insight implements the client financial risk and profitability
// engine: read-only, per-request analysis computed from invoice, payment
// and sale history. All computations are pure functions over fact slices
// loaded through FactRepository; nothing in this package writes state.
package insight

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFact is the per-invoice slice of data the engine needs.
// PaidAmount is the sum of all payments applied to the invoice.
type InvoiceFact struct {
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

// Outstanding returns total minus paid amount. The subtraction is not
// clamped at zero: overpayment shows up as a negative outstanding amount
// rather than being silently hidden.
func (f InvoiceFact) Outstanding() decimal.Decimal {
	return f.Total.Sub(f.PaidAmount)
}

// IsPaid reports whether the invoice was actually settled
func (f InvoiceFact) IsPaid() bool {
	return f.Status == billing.InvoiceStatusPaid && f.PaidAt != nil
}

// IsOverdue reports whether the invoice is unpaid and past due at the
// reference time
func (f InvoiceFact) IsOverdue(now time.Time) bool {
	return f.Status != billing.InvoiceStatusPaid && f.DueDate.Before(now)
}

// SaleFact is the per-sale slice of data the engine needs. Price minus
// discount acts as the cost proxy.
type SaleFact struct {
	ID       uuid.UUID
	Product  string
	Price    decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	SaleDate time.Time
	Currency string
}

// Cost returns the cost proxy for the sale
func (f SaleFact) Cost() decimal.Decimal {
	return f.Price.Sub(f.Discount)
}

// PaymentFact is one payment row, used by the timeline
type PaymentFact struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    billing.PaymentMethod
	Currency  string
}

// ClientFact is the identity slice of a client, used by the timeline
type ClientFact struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// daysBetween returns the elapsed time between two instants in days
func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// round2 rounds a monetary amount to two decimal places (half away from
// zero, i.e. round-half-up on the cent for positive amounts)
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
