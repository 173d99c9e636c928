package handler

import (
	"time"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers invoice routes on the API group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.POST("/:id/issue", h.Issue)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.GET("/:id/payments", h.ListPayments)
	}

	// The overdue sweep mutates every due invoice in the tenant, so it
	// lives under the admin prefix rather than the resource itself.
	rg.POST("/admin/invoices/mark-overdue", h.MarkOverdue)
}

// CreateInvoiceRequest represents a request to create a new draft invoice
type CreateInvoiceRequest struct {
	ClientID  string    `json:"client_id" binding:"required,uuid"`
	Number    string    `json:"number" binding:"required,min=1,max=50"`
	Type      string    `json:"type" binding:"omitempty,oneof=CUSTOMER SUPPLIER"`
	Total     float64   `json:"total" binding:"gte=0"`
	Currency  string    `json:"currency" binding:"omitempty,currency"`
	IssueDate time.Time `json:"issue_date" binding:"required"`
	DueDate   time.Time `json:"due_date" binding:"required"`
}

// RecordPaymentRequest represents a request to apply a payment to an invoice
type RecordPaymentRequest struct {
	Amount float64   `json:"amount" binding:"required,gt=0"`
	PaidAt time.Time `json:"paid_at" binding:"required"`
	Method string    `json:"method" binding:"omitempty,oneof=transfer card cash other"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	IssueDate time.Time       `json:"issue_date"`
	DueDate   time.Time       `json:"due_date"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:        invoice.ID,
		ClientID:  invoice.ClientID,
		Number:    invoice.Number,
		Type:      string(invoice.Type),
		Status:    string(invoice.Status),
		Currency:  invoice.Currency,
		Total:     invoice.Total,
		IssueDate: invoice.IssueDate,
		DueDate:   invoice.DueDate,
		PaidAt:    invoice.PaidAt,
		CreatedAt: invoice.CreatedAt,
		UpdatedAt: invoice.UpdatedAt,
	}
}

// PaymentResponse represents an invoice payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    string          `json:"method"`
	CreatedAt time.Time       `json:"created_at"`
}

func newPaymentResponse(payment *billing.InvoicePayment) PaymentResponse {
	return PaymentResponse{
		ID:        payment.ID,
		InvoiceID: payment.InvoiceID,
		Amount:    payment.Amount,
		PaidAt:    payment.PaidAt,
		Method:    string(payment.Method),
		CreatedAt: payment.CreatedAt,
	}
}

// MarkOverdueResponse reports how many invoices the sweep transitioned
type MarkOverdueResponse struct {
	Marked int `json:"marked"`
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceType := billing.InvoiceType(req.Type)
	if req.Type == "" {
		invoiceType = billing.InvoiceTypeCustomer
	}

	invoice, err := h.invoiceService.CreateInvoice(
		c.Request.Context(),
		tenantID,
		uuid.MustParse(req.ClientID),
		req.Number,
		invoiceType,
		decimal.NewFromFloat(req.Total),
		req.Currency,
		req.IssueDate,
		req.DueDate,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newInvoiceResponse(invoice))
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newInvoiceResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newInvoiceResponse(invoice))
}

// Issue handles POST /invoices/:id/issue
func (h *InvoiceHandler) Issue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newInvoiceResponse(invoice))
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newInvoiceResponse(invoice))
}

// RecordPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	method := billing.PaymentMethod(req.Method)
	if req.Method == "" {
		method = billing.PaymentMethodTransfer
	}

	payment, err := h.invoiceService.RecordPayment(
		c.Request.Context(),
		tenantID,
		uuid.MustParse(uri.ID),
		decimal.NewFromFloat(req.Amount),
		req.PaidAt,
		method,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newPaymentResponse(payment))
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, newPaymentResponse(&payments[i]))
	}

	h.Success(c, items)
}

// MarkOverdue handles POST /admin/invoices/mark-overdue
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	marked, err := h.invoiceService.MarkOverdueInvoices(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MarkOverdueResponse{Marked: marked})
}
