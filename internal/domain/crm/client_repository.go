package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindAll finds all clients for a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindByStatus finds clients by lifecycle status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ClientStatus, filter shared.Filter) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete deletes a client within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts clients for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
