package handler

import (
	"time"

	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers sale routes on the API group
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sales")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id/status", h.ChangeStatus)
	}

	rg.GET("/clients/:id/sales", h.ListForClient)
}

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	ClientID string    `json:"client_id" binding:"required,uuid"`
	Product  string    `json:"product" binding:"required,min=1,max=200"`
	Price    float64   `json:"price" binding:"gte=0"`
	Discount float64   `json:"discount" binding:"gte=0"`
	Total    float64   `json:"total" binding:"gte=0"`
	SaleDate time.Time `json:"sale_date" binding:"required"`
	Currency string    `json:"currency" binding:"omitempty,currency"`
}

// ChangeSaleStatusRequest represents a request to move a sale through
// its lifecycle
type ChangeSaleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open won lost cancelled"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	Product   string          `json:"product"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	SaleDate  time.Time       `json:"sale_date"`
	Status    string          `json:"status"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newSaleResponse(sale *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:        sale.ID,
		ClientID:  sale.ClientID,
		Product:   sale.Product,
		Price:     sale.Price,
		Discount:  sale.Discount,
		Total:     sale.Total,
		SaleDate:  sale.SaleDate,
		Status:    string(sale.Status),
		Currency:  sale.Currency,
		CreatedAt: sale.CreatedAt,
		UpdatedAt: sale.UpdatedAt,
	}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.CreateSale(
		c.Request.Context(),
		tenantID,
		uuid.MustParse(req.ClientID),
		req.Product,
		decimal.NewFromFloat(req.Price),
		decimal.NewFromFloat(req.Discount),
		decimal.NewFromFloat(req.Total),
		req.SaleDate,
		req.Currency,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newSaleResponse(sale))
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
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

	page, err := h.saleService.ListSales(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]SaleResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newSaleResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSaleResponse(sale))
}

// ChangeStatus handles PATCH /sales/:id/status
func (h *SaleHandler) ChangeStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	var req ChangeSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.ChangeSaleStatus(c.Request.Context(), tenantID, uuid.MustParse(uri.ID), sales.SaleStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSaleResponse(sale))
}

// ListForClient handles GET /clients/:id/sales
func (h *SaleHandler) ListForClient(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	clientSales, err := h.saleService.ListClientSales(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]SaleResponse, 0, len(clientSales))
	for i := range clientSales {
		items = append(items, newSaleResponse(&clientSales[i]))
	}

	h.Success(c, items)
}
