package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID within a tenant
func (r *GormClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	var client crm.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindAll finds all clients for a tenant matching the filter
func (r *GormClientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Client, error) {
	var clients []crm.Client
	query := applyFilter(
		r.db.WithContext(ctx).Model(&crm.Client{}).Where("tenant_id = ?", tenantID),
		filter, clientSearchColumns, clientSortFields,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByStatus finds clients by lifecycle status for a tenant
func (r *GormClientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.ClientStatus, filter shared.Filter) ([]crm.Client, error) {
	var clients []crm.Client
	query := applyFilter(
		r.db.WithContext(ctx).Model(&crm.Client{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, clientSearchColumns, clientSortFields,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *crm.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete deletes a client within a tenant
func (r *GormClientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&crm.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts clients for a tenant matching the filter
func (r *GormClientRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applySearch(
		r.db.WithContext(ctx).Model(&crm.Client{}).Where("tenant_id = ?", tenantID),
		filter, clientSearchColumns,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var clientSearchColumns = []string{"name", "email", "tax_id"}

// applySearch adds the filter's search clause without pagination
func applySearch(query *gorm.DB, filter shared.Filter, searchColumns []string) *gorm.DB {
	if filter.Search == "" || len(searchColumns) == 0 {
		return query
	}
	pattern := "%" + filter.Search + "%"
	clauses := make([]string, len(searchColumns))
	args := make([]interface{}, len(searchColumns))
	for i, col := range searchColumns {
		clauses[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(clauses, " OR "), args...)
}

// applyFilter adds search, pagination and ordering clauses. The order
// column comes from the request, so it is checked against the repo's
// allow-list before entering the query.
func applyFilter(query *gorm.DB, filter shared.Filter, searchColumns []string, sortFields map[string]bool) *gorm.DB {
	query = applySearch(query, filter, searchColumns)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	orderBy := ValidateSortField(filter.OrderBy, sortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}
