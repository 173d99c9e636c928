package sales

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindAll finds all sales for a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// FindByClient finds all sales for a client within a tenant
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Sale, error)

	// Save creates or updates a sale
	Save(ctx context.Context, sale *Sale) error

	// Count counts sales for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
