package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSaleRepository implements sales.SaleRepository for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newSaleTestRouter(repo sales.SaleRepository) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequireTenant())

	service := salesapp.NewSaleService(repo, zap.NewNop())
	r := router.NewRouter(engine)
	r.Register(NewSaleHandler(service))
	r.Setup()
	return engine
}

func TestSaleHandler_Create(t *testing.T) {
	repo := new(MockSaleRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)

	engine := newSaleTestRouter(repo)
	tenantID := uuid.New()
	clientID := uuid.New()

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sales", tenantID, gin.H{
		"client_id": clientID.String(),
		"product":   "Consulting retainer",
		"price":     1200.0,
		"discount":  200.0,
		"total":     1000.0,
		"sale_date": "2026-06-15T00:00:00Z",
		"currency":  "EUR",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "open", data["status"])
	assert.Equal(t, "Consulting retainer", data["product"])
	assert.Equal(t, clientID.String(), data["client_id"])
	assert.Equal(t, "1000", data["total"])
	assert.Equal(t, "EUR", data["currency"])
	repo.AssertExpectations(t)
}

func TestSaleHandler_Create_DiscountExceedsPrice(t *testing.T) {
	repo := new(MockSaleRepository)
	engine := newSaleTestRouter(repo)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sales", uuid.New(), gin.H{
		"client_id": uuid.NewString(),
		"product":   "Consulting retainer",
		"price":     100.0,
		"discount":  250.0,
		"total":     0.0,
		"sale_date": "2026-06-15T00:00:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Save")
}

func TestSaleHandler_ChangeStatus(t *testing.T) {
	tenantID := uuid.New()
	sale, err := sales.NewSale(tenantID, uuid.New(), "License renewal",
		decimal.NewFromInt(500), decimal.Zero, decimal.NewFromInt(500),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "EUR")
	require.NoError(t, err)

	repo := new(MockSaleRepository)
	repo.On("FindByID", mock.Anything, tenantID, sale.ID).Return(sale, nil)
	repo.On("Save", mock.Anything, sale).Return(nil)

	engine := newSaleTestRouter(repo)

	w := doJSON(t, engine, http.MethodPatch, "/api/v1/sales/"+sale.ID.String()+"/status", tenantID, gin.H{
		"status": "won",
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "won", data["status"])
	repo.AssertExpectations(t)
}

func TestSaleHandler_ChangeStatus_UnknownStatus(t *testing.T) {
	repo := new(MockSaleRepository)
	engine := newSaleTestRouter(repo)

	w := doJSON(t, engine, http.MethodPatch, "/api/v1/sales/"+uuid.NewString()+"/status", uuid.New(), gin.H{
		"status": "pending",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "FindByID")
}

func TestSaleHandler_ListForClient(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()

	first, err := sales.NewSale(tenantID, clientID, "Support plan",
		decimal.NewFromInt(300), decimal.Zero, decimal.NewFromInt(300),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "EUR")
	require.NoError(t, err)
	second, err := sales.NewSale(tenantID, clientID, "Training day",
		decimal.NewFromInt(800), decimal.NewFromInt(100), decimal.NewFromInt(700),
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), "EUR")
	require.NoError(t, err)

	repo := new(MockSaleRepository)
	repo.On("FindByClient", mock.Anything, tenantID, clientID).Return([]sales.Sale{*first, *second}, nil)

	engine := newSaleTestRouter(repo)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/clients/"+clientID.String()+"/sales", tenantID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items := resp.Data.([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Support plan", items[0].(map[string]any)["product"])
	repo.AssertExpectations(t)
}

func TestSaleHandler_List(t *testing.T) {
	tenantID := uuid.New()
	sale, err := sales.NewSale(tenantID, uuid.New(), "Hardware bundle",
		decimal.NewFromInt(2500), decimal.Zero, decimal.NewFromInt(2500),
		time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), "EUR")
	require.NoError(t, err)

	repo := new(MockSaleRepository)
	repo.On("FindAll", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return([]sales.Sale{*sale}, nil)
	repo.On("Count", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	engine := newSaleTestRouter(repo)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/sales?page=1&page_size=10", tenantID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	repo.AssertExpectations(t)
}