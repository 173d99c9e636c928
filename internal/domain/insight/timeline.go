package insight

import (
	"sort"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies one of the six timeline event variants
type EventType string

const (
	EventTypeCreation       EventType = "creation"
	EventTypeSale           EventType = "sale"
	EventTypeInvoiceIssued  EventType = "invoice_issued"
	EventTypeInvoicePaid    EventType = "invoice_paid"
	EventTypeInvoiceOverdue EventType = "invoice_overdue"
	EventTypePayment        EventType = "payment"
)

// TimelineEvent is one entry in the client lifecycle feed
type TimelineEvent struct {
	ID           string           `json:"id"`
	Type         EventType        `json:"type"`
	Date         time.Time        `json:"date"`
	Title        string           `json:"title"`
	Subtitle     string           `json:"subtitle,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	ResourceID   uuid.UUID        `json:"resource_id"`
	ResourceType string           `json:"resource_type"`
}

// BuildTimeline merges the client's lifecycle sources into one feed
// sorted newest first. A paid invoice yields two events (issued and
// paid); an unpaid invoice past its due date yields issued and overdue;
// an invoice never yields both paid and overdue. The sort is stable so
// same-instant events keep their emission order. A nil client produces
// an empty feed.
func BuildTimeline(now time.Time, client *ClientFact, sales []SaleFact, invoices []InvoiceFact, payments []PaymentFact) []TimelineEvent {
	if client == nil {
		return []TimelineEvent{}
	}

	events := make([]TimelineEvent, 0, 1+len(sales)+2*len(invoices)+len(payments))

	events = append(events, TimelineEvent{
		ID:           "creation:" + client.ID.String(),
		Type:         EventTypeCreation,
		Date:         client.CreatedAt,
		Title:        "Client created",
		Subtitle:     client.Name,
		ResourceID:   client.ID,
		ResourceType: "client",
	})

	for _, s := range sales {
		amount := s.Total
		events = append(events, TimelineEvent{
			ID:           "sale:" + s.ID.String(),
			Type:         EventTypeSale,
			Date:         s.SaleDate,
			Title:        "Sale: " + s.Product,
			Amount:       &amount,
			Currency:     s.Currency,
			ResourceID:   s.ID,
			ResourceType: "sale",
		})
	}

	for _, inv := range invoices {
		amount := inv.Total
		events = append(events, TimelineEvent{
			ID:           "invoice_issued:" + inv.ID.String(),
			Type:         EventTypeInvoiceIssued,
			Date:         inv.IssueDate,
			Title:        "Invoice " + inv.Number + " issued",
			Amount:       &amount,
			Currency:     inv.Currency,
			ResourceID:   inv.ID,
			ResourceType: "invoice",
		})

		switch {
		case inv.IsPaid():
			paidAmount := inv.Total
			events = append(events, TimelineEvent{
				ID:           "invoice_paid:" + inv.ID.String(),
				Type:         EventTypeInvoicePaid,
				Date:         *inv.PaidAt,
				Title:        "Invoice " + inv.Number + " paid",
				Amount:       &paidAmount,
				Currency:     inv.Currency,
				ResourceID:   inv.ID,
				ResourceType: "invoice",
			})
		case inv.Status != billing.InvoiceStatusCanceled && inv.DueDate.Before(now):
			dueAmount := inv.Outstanding()
			events = append(events, TimelineEvent{
				ID:           "invoice_overdue:" + inv.ID.String(),
				Type:         EventTypeInvoiceOverdue,
				Date:         inv.DueDate,
				Title:        "Invoice " + inv.Number + " overdue",
				Amount:       &dueAmount,
				Currency:     inv.Currency,
				ResourceID:   inv.ID,
				ResourceType: "invoice",
			})
		}
	}

	for _, p := range payments {
		amount := p.Amount
		events = append(events, TimelineEvent{
			ID:           "payment:" + p.ID.String(),
			Type:         EventTypePayment,
			Date:         p.PaidAt,
			Title:        "Payment received",
			Subtitle:     string(p.Method),
			Amount:       &amount,
			Currency:     p.Currency,
			ResourceID:   p.ID,
			ResourceType: "payment",
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})

	return events
}
