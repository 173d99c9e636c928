package billing

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "DRAFT"    // Editable, excluded from reporting
	InvoiceStatusSent     InvoiceStatus = "SENT"     // Issued to the client, awaiting payment
	InvoiceStatusPaid     InvoiceStatus = "PAID"     // Fully paid, PaidAt is set
	InvoiceStatusOverdue  InvoiceStatus = "OVERDUE"  // Past due date, unpaid
	InvoiceStatusCanceled InvoiceStatus = "CANCELED" // Voided, excluded from reporting
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CountsForReporting returns true if invoices in this status participate
// in financial aggregation (drafts and cancellations never do).
func (s InvoiceStatus) CountsForReporting() bool {
	return s != InvoiceStatusDraft && s != InvoiceStatusCanceled
}

// InvoiceType distinguishes outbound customer invoices from other documents
type InvoiceType string

const (
	InvoiceTypeCustomer InvoiceType = "CUSTOMER"
	InvoiceTypeSupplier InvoiceType = "SUPPLIER"
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeCustomer || t == InvoiceTypeSupplier
}

// Invoice is the aggregate root for billing documents.
// Invariant: PaidAt is set if and only if Status is PAID.
type Invoice struct {
	shared.TenantAggregateRoot
	ClientID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	Type      InvoiceType     `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	Status    InvoiceStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IssueDate time.Time       `gorm:"not null"`
	DueDate   time.Time       `gorm:"not null"`
	PaidAt    *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice
func NewInvoice(tenantID, clientID uuid.UUID, number string, invoiceType InvoiceType, total decimal.Decimal, currency string, issueDate, dueDate time.Time) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number is required")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown invoice type: "+string(invoiceType))
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Invoice total cannot be negative")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
	}
	if currency == "" {
		currency = "EUR"
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Number:              number,
		Type:                invoiceType,
		Status:              InvoiceStatusDraft,
		Currency:            currency,
		Total:               total,
		IssueDate:           issueDate,
		DueDate:             dueDate,
	}, nil
}

// Issue transitions the invoice from DRAFT to SENT
func (i *Invoice) Issue() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be issued")
	}
	i.Status = InvoiceStatusSent
	return nil
}

// MarkPaid transitions the invoice to PAID and records the payment time
func (i *Invoice) MarkPaid(paidAt time.Time) error {
	switch i.Status {
	case InvoiceStatusSent, InvoiceStatusOverdue:
	default:
		return shared.NewDomainError("INVALID_STATE", "Invoice cannot be paid in status "+i.Status.String())
	}
	i.Status = InvoiceStatusPaid
	i.PaidAt = &paidAt
	return nil
}

// MarkOverdue flags a sent invoice whose due date has passed
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status != InvoiceStatusSent {
		return shared.NewDomainError("INVALID_STATE", "Only sent invoices can become overdue")
	}
	if !i.DueDate.Before(now) {
		return shared.NewDomainError("INVALID_STATE", "Invoice is not past its due date")
	}
	i.Status = InvoiceStatusOverdue
	return nil
}

// Cancel voids the invoice. Paid invoices cannot be cancelled.
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be cancelled")
	}
	if i.Status == InvoiceStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	i.Status = InvoiceStatusCanceled
	return nil
}

// IsPastDue returns true if the invoice is unpaid and past its due date
func (i *Invoice) IsPastDue(now time.Time) bool {
	return i.Status != InvoiceStatusPaid && i.Status.CountsForReporting() && i.DueDate.Before(now)
}

// PaymentMethod identifies how an invoice payment was made
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCash, PaymentMethodOther:
		return true
	}
	return false
}

// InvoicePayment records one payment applied to an invoice.
// Multiple payments may apply to the same invoice (partial payment).
type InvoicePayment struct {
	shared.BaseEntity
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAt    time.Time       `gorm:"not null"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null;default:'transfer'"`
}

// TableName returns the table name for GORM
func (InvoicePayment) TableName() string {
	return "invoice_payments"
}

// NewInvoicePayment creates a payment record for an invoice
func NewInvoicePayment(tenantID, invoiceID uuid.UUID, amount decimal.Decimal, paidAt time.Time, method PaymentMethod) (*InvoicePayment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method: "+string(method))
	}

	return &InvoicePayment{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		InvoiceID:  invoiceID,
		Amount:     amount,
		PaidAt:     paidAt,
		Method:     method,
	}, nil
}
