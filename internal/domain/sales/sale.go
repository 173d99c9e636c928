package sales

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the pipeline status of a sale
type SaleStatus string

const (
	SaleStatusOpen      SaleStatus = "open"
	SaleStatusWon       SaleStatus = "won"
	SaleStatusLost      SaleStatus = "lost"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusOpen, SaleStatusWon, SaleStatusLost, SaleStatusCancelled:
		return true
	}
	return false
}

// Sale records one product sale to a client. Price minus discount is used
// as the cost proxy by the profitability analysis.
type Sale struct {
	shared.TenantAggregateRoot
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Product  string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SaleDate time.Time       `gorm:"not null;index"`
	Status   SaleStatus      `gorm:"type:varchar(20);not null;default:'open'"`
	Currency string          `gorm:"type:varchar(3);not null;default:'EUR'"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale record
func NewSale(tenantID, clientID uuid.UUID, product string, price, discount, total decimal.Decimal, saleDate time.Time, currency string) (*Sale, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Sale product is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Sale discount cannot be negative")
	}
	if discount.GreaterThan(price) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Sale discount cannot exceed price")
	}
	if currency == "" {
		currency = "EUR"
	}

	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Product:             product,
		Price:               price,
		Discount:            discount,
		Total:               total,
		SaleDate:            saleDate,
		Status:              SaleStatusOpen,
		Currency:            currency,
	}, nil
}

// Cost returns the cost proxy for this sale (price minus discount)
func (s *Sale) Cost() decimal.Decimal {
	return s.Price.Sub(s.Discount)
}

// ChangeStatus moves the sale through the pipeline
func (s *Sale) ChangeStatus(status SaleStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown sale status: "+string(status))
	}
	s.Status = status
	return nil
}
