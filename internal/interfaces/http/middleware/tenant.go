package middleware

import (
	"net/http"
	"strings"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDKey is the gin context key holding the resolved tenant ID
const TenantIDKey = "tenant_id"

// TenantHeader is the header clients use to scope requests to a tenant
const TenantHeader = "X-Tenant-ID"

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths lists exact request paths that bypass tenant resolution
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that bypass tenant resolution
	SkipPathPrefixes []string
}

// RequireTenant resolves the tenant from the X-Tenant-ID header and
// stores it in the gin context. Requests without a valid tenant UUID
// are rejected; every resource in the system is tenant scoped.
func RequireTenant() gin.HandlerFunc {
	return RequireTenantWithConfig(TenantConfig{})
}

// RequireTenantWithConfig returns a tenant middleware that skips the
// configured paths (health probes, system info)
func RequireTenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest,
				"X-Tenant-ID header is required",
			))
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest,
				"X-Tenant-ID header must be a valid UUID",
			))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant ID resolved by RequireTenant, or
// uuid.Nil with false when the middleware did not run
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}
