package insight

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed reference time for deterministic tests
var testNow = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// paidInvoice builds a PAID invoice issued at issue, due at due, settled at paidAt
func paidInvoice(total float64, issue, due, paidAt time.Time) InvoiceFact {
	return InvoiceFact{
		ID:         uuid.New(),
		Number:     "INV-TEST",
		Currency:   "EUR",
		Status:     billing.InvoiceStatusPaid,
		Total:      dec(total),
		PaidAmount: dec(total),
		IssueDate:  issue,
		DueDate:    due,
		PaidAt:     &paidAt,
	}
}

// openInvoice builds a SENT invoice with no payments applied
func openInvoice(total float64, issue, due time.Time) InvoiceFact {
	return InvoiceFact{
		ID:        uuid.New(),
		Number:    "INV-TEST",
		Currency:  "EUR",
		Status:    billing.InvoiceStatusSent,
		Total:     dec(total),
		IssueDate: issue,
		DueDate:   due,
	}
}

func sale(total, price, discount float64, date time.Time) SaleFact {
	return SaleFact{
		ID:       uuid.New(),
		Product:  "Consulting",
		Price:    dec(price),
		Discount: dec(discount),
		Total:    dec(total),
		SaleDate: date,
		Currency: "EUR",
	}
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func daysFromNow(n int) time.Time {
	return testNow.AddDate(0, 0, n)
}
