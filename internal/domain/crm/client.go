package crm

import (
	"regexp"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientStatus represents the lifecycle status of a client
type ClientStatus string

const (
	ClientStatusLead     ClientStatus = "lead"     // Prospect, not yet converted
	ClientStatusActive   ClientStatus = "active"   // Billable client
	ClientStatusInactive ClientStatus = "inactive" // No longer billed
	ClientStatusArchived ClientStatus = "archived"
)

// IsValid checks if the status is a valid ClientStatus
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusLead, ClientStatusActive, ClientStatusInactive, ClientStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ClientStatus
func (s ClientStatus) String() string {
	return string(s)
}

// RiskLevel classifies a client's payment-behavior risk
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	return l == RiskLevelLow || l == RiskLevelMedium || l == RiskLevelHigh
}

// String returns the string representation of RiskLevel
func (l RiskLevel) String() string {
	return string(l)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Client is the aggregate root for client relationship management.
// The stored RiskLevel is a denormalized copy of the latest computed
// assessment; the source of truth is the insight engine.
type Client struct {
	shared.TenantAggregateRoot
	Name      string       `gorm:"type:varchar(200);not null"`
	Email     string       `gorm:"type:varchar(200);index"`
	Phone     string       `gorm:"type:varchar(50)"`
	TaxID     string       `gorm:"column:tax_id;type:varchar(50)"`
	Status    ClientStatus `gorm:"type:varchar(20);not null;default:'lead'"`
	RiskLevel RiskLevel    `gorm:"type:varchar(10);not null;default:'low'"`
	Notes     string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client in lead status
func NewClient(tenantID uuid.UUID, name, email, phone, taxID string) (*Client, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Email:               strings.TrimSpace(email),
		Phone:               strings.TrimSpace(phone),
		TaxID:               strings.TrimSpace(taxID),
		Status:              ClientStatusLead,
		RiskLevel:           RiskLevelLow,
	}, nil
}

// Update updates the client's contact information
func (c *Client) Update(name, email, phone, taxID string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.Email = strings.TrimSpace(email)
	c.Phone = strings.TrimSpace(phone)
	c.TaxID = strings.TrimSpace(taxID)
	return nil
}

// ChangeStatus transitions the client to a new lifecycle status
func (c *Client) ChangeStatus(status ClientStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown client status: "+status.String())
	}
	if c.Status == ClientStatusArchived && status != ClientStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived clients cannot change status")
	}
	c.Status = status
	return nil
}

// SetRiskLevel stores the latest computed risk classification
func (c *Client) SetRiskLevel(level RiskLevel) error {
	if !level.IsValid() {
		return shared.NewDomainError("INVALID_RISK_LEVEL", "Unknown risk level: "+level.String())
	}
	c.RiskLevel = level
	return nil
}

// IsArchived returns true if the client has been archived
func (c *Client) IsArchived() bool {
	return c.Status == ClientStatusArchived
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
