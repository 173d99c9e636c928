package handler

import (
	insightapp "github.com/crm/backend/internal/application/insight"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InsightHandler exposes the financial analysis endpoints for a client:
// KPIs, risk scoring, profitability and the lifecycle timeline. All four
// read from the billing and sales fact sets; none of them mutate state.
type InsightHandler struct {
	BaseHandler
	insightService *insightapp.Service
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insightService *insightapp.Service) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// RegisterRoutes registers insight routes on the API group
func (h *InsightHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients/:id")
	{
		clients.GET("/kpis", h.GetKPIs)
		clients.GET("/risk", h.GetRisk)
		clients.GET("/profitability", h.GetProfitability)
		clients.GET("/timeline", h.GetTimeline)
	}
}

// GetKPIs handles GET /clients/:id/kpis
func (h *InsightHandler) GetKPIs(c *gin.Context) {
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

	kpis, err := h.insightService.GetFinancialKPIs(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, kpis)
}

// GetRisk handles GET /clients/:id/risk
func (h *InsightHandler) GetRisk(c *gin.Context) {
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

	risk, err := h.insightService.GetFinancialRisk(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, risk)
}

// GetProfitability handles GET /clients/:id/profitability
func (h *InsightHandler) GetProfitability(c *gin.Context) {
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

	profitability, err := h.insightService.GetProfitability(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profitability)
}

// GetTimeline handles GET /clients/:id/timeline
func (h *InsightHandler) GetTimeline(c *gin.Context) {
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

	timeline, err := h.insightService.GetTimeline(c.Request.Context(), tenantID, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, timeline)
}
