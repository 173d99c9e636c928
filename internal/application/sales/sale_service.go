package sales

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService handles sale record operations
type SaleService struct {
	saleRepo sales.SaleRepository
	logger   *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo sales.SaleRepository, logger *zap.Logger) *SaleService {
	return &SaleService{
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// CreateSale records a new sale for a client
func (s *SaleService) CreateSale(ctx context.Context, tenantID, clientID uuid.UUID, product string, price, discount, total decimal.Decimal, saleDate time.Time, currency string) (*sales.Sale, error) {
	sale, err := sales.NewSale(tenantID, clientID, product, price, discount, total, saleDate, currency)
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("client_id", clientID.String()),
	)

	return sale, nil
}

// GetSale returns one sale by ID
func (s *SaleService) GetSale(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	return s.saleRepo.FindByID(ctx, tenantID, id)
}

// ListSales returns a page of sales for the tenant
func (s *SaleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[sales.Sale], error) {
	items, err := s.saleRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[sales.Sale]{}, err
	}

	total, err := s.saleRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[sales.Sale]{}, err
	}

	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListClientSales returns all sales linked to one client
func (s *SaleService) ListClientSales(ctx context.Context, tenantID, clientID uuid.UUID) ([]sales.Sale, error) {
	return s.saleRepo.FindByClient(ctx, tenantID, clientID)
}

// ChangeSaleStatus moves a sale through the pipeline
func (s *SaleService) ChangeSaleStatus(ctx context.Context, tenantID, id uuid.UUID, status sales.SaleStatus) (*sales.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := sale.ChangeStatus(status); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	return sale, nil
}
