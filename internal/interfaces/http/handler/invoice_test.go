package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
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

// MockInvoiceRepository implements billing.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindSentDueBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, before)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepository implements billing.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.InvoicePayment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]billing.InvoicePayment), args.Error(1)
}

func (m *MockPaymentRepository) SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.InvoicePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func newInvoiceTestRouter(invoices billing.InvoiceRepository, payments billing.PaymentRepository) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequireTenant())

	service := billingapp.NewInvoiceService(invoices, payments, zap.NewNop())
	r := router.NewRouter(engine)
	r.Register(NewInvoiceHandler(service))
	r.Setup()
	return engine
}

func newTestInvoice(t *testing.T, tenantID uuid.UUID) *billing.Invoice {
	t.Helper()
	issue := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := billing.NewInvoice(
		tenantID,
		uuid.New(),
		"INV-1001",
		billing.InvoiceTypeCustomer,
		decimal.NewFromInt(1000),
		"EUR",
		issue,
		issue.AddDate(0, 0, 30),
	)
	require.NoError(t, err)
	return invoice
}

func TestInvoiceHandler_Create(t *testing.T) {
	tenantID := uuid.New()

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByNumber", mock.Anything, tenantID, "INV-1001").Return(nil, shared.ErrNotFound)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	engine := newInvoiceTestRouter(invoices, new(MockPaymentRepository))
	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", tenantID, CreateInvoiceRequest{
		ClientID:  uuid.NewString(),
		Number:    "INV-1001",
		Total:     1000,
		IssueDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "CUSTOMER", data["type"])
	assert.Equal(t, "EUR", data["currency"])
	invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Create_DuplicateNumber(t *testing.T) {
	tenantID := uuid.New()
	existing := newTestInvoice(t, tenantID)

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByNumber", mock.Anything, tenantID, "INV-1001").Return(existing, nil)

	engine := newInvoiceTestRouter(invoices, new(MockPaymentRepository))
	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices", tenantID, CreateInvoiceRequest{
		ClientID:  uuid.NewString(),
		Number:    "INV-1001",
		Total:     500,
		IssueDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	invoices.AssertNotCalled(t, "Save")
}

func TestInvoiceHandler_Issue(t *testing.T) {
	tenantID := uuid.New()
	invoice := newTestInvoice(t, tenantID)

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	engine := newInvoiceTestRouter(invoices, new(MockPaymentRepository))
	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/issue", tenantID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "SENT", data["status"])
}

func TestInvoiceHandler_Issue_AlreadySent(t *testing.T) {
	tenantID := uuid.New()
	invoice := newTestInvoice(t, tenantID)
	require.NoError(t, invoice.Issue())

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)

	engine := newInvoiceTestRouter(invoices, new(MockPaymentRepository))
	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/issue", tenantID, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestInvoiceHandler_RecordPayment_SettlesInvoice(t *testing.T) {
	tenantID := uuid.New()
	invoice := newTestInvoice(t, tenantID)
	require.NoError(t, invoice.Issue())

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	payments := new(MockPaymentRepository)
	payments.On("Save", mock.Anything, mock.AnythingOfType("*billing.InvoicePayment")).Return(nil)
	payments.On("SumByInvoice", mock.Anything, tenantID, invoice.ID).Return(decimal.NewFromInt(1000), nil)

	engine := newInvoiceTestRouter(invoices, payments)
	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/payments", tenantID,
		RecordPaymentRequest{
			Amount: 1000,
			PaidAt: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "transfer", data["method"])
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
	payments.AssertExpectations(t)
}

func TestInvoiceHandler_RecordPayment_RejectsZeroAmount(t *testing.T) {
	engine := newInvoiceTestRouter(new(MockInvoiceRepository), new(MockPaymentRepository))

	w := doJSON(t, engine, http.MethodPost, "/api/v1/invoices/"+uuid.NewString()+"/payments", uuid.New(),
		RecordPaymentRequest{
			Amount: 0,
			PaidAt: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_MarkOverdue(t *testing.T) {
	tenantID := uuid.New()
	invoice := newTestInvoice(t, tenantID)
	require.NoError(t, invoice.Issue())

	invoices := new(MockInvoiceRepository)
	invoices.On("FindSentDueBefore", mock.Anything, tenantID, mock.AnythingOfType("time.Time")).
		Return([]billing.Invoice{*invoice}, nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequireTenant())
	service := billingapp.NewInvoiceService(invoices, new(MockPaymentRepository), zap.NewNop()).
		WithClock(func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) })
	r := router.NewRouter(engine)
	r.Register(NewInvoiceHandler(service))
	r.Setup()

	w := doJSON(t, engine, http.MethodPost, "/api/v1/admin/invoices/mark-overdue", tenantID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["marked"])
}
