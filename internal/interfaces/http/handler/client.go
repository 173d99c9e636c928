package handler

import (
	"time"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *crmapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *crmapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// RegisterRoutes registers client routes on the API group
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients")
	{
		clients.POST("", h.Create)
		clients.GET("", h.List)
		clients.GET("/:id", h.Get)
		clients.PUT("/:id", h.Update)
		clients.PATCH("/:id/status", h.ChangeStatus)
		clients.PATCH("/:id/risk-level", h.SetRiskLevel)
		clients.DELETE("/:id", h.Delete)
	}
}

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
	TaxID string `json:"tax_id" binding:"max=50"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
	TaxID string `json:"tax_id" binding:"max=50"`
}

// ChangeClientStatusRequest represents a request to move a client
// through its lifecycle
type ChangeClientStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=lead active inactive archived"`
}

// SetRiskLevelRequest represents a request to override a client's
// stored risk level
type SetRiskLevelRequest struct {
	Level string `json:"level" binding:"required,oneof=low medium high"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	TaxID     string    `json:"tax_id"`
	Status    string    `json:"status"`
	RiskLevel string    `json:"risk_level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newClientResponse(client *crm.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		TaxID:     client.TaxID,
		Status:    string(client.Status),
		RiskLevel: string(client.RiskLevel),
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), tenantID, req.Name, req.Email, req.Phone, req.TaxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newClientResponse(client))
}

// List handles GET /clients
func (h *ClientHandler) List(c *gin.Context) {
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

	page, err := h.clientService.ListClients(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ClientResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newClientResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
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
	clientID := uuid.MustParse(uri.ID)

	client, err := h.clientService.GetClient(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newClientResponse(client))
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
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
	clientID := uuid.MustParse(uri.ID)

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), tenantID, clientID, req.Name, req.Email, req.Phone, req.TaxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newClientResponse(client))
}

// ChangeStatus handles PATCH /clients/:id/status
func (h *ClientHandler) ChangeStatus(c *gin.Context) {
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
	clientID := uuid.MustParse(uri.ID)

	var req ChangeClientStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.ChangeClientStatus(c.Request.Context(), tenantID, clientID, crm.ClientStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newClientResponse(client))
}

// SetRiskLevel handles PATCH /clients/:id/risk-level
func (h *ClientHandler) SetRiskLevel(c *gin.Context) {
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
	clientID := uuid.MustParse(uri.ID)

	var req SetRiskLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.clientService.SetClientRiskLevel(c.Request.Context(), tenantID, clientID, crm.RiskLevel(req.Level)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete handles DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
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
	clientID := uuid.MustParse(uri.ID)

	if err := h.clientService.DeleteClient(c.Request.Context(), tenantID, clientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
