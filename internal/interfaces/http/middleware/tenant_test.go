package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantRouter() (*gin.Engine, *uuid.UUID) {
	var captured uuid.UUID
	router := gin.New()
	router.Use(RequireTenant())
	router.GET("/clients", func(c *gin.Context) {
		tenantID, ok := GetTenantID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		captured = tenantID
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestRequireTenant_ValidHeader(t *testing.T) {
	router, captured := newTenantRouter()
	tenantID := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set(TenantHeader, tenantID.String())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, *captured)
}

func TestRequireTenant_MissingHeader(t *testing.T) {
	router, _ := newTenantRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestRequireTenant_MalformedHeader(t *testing.T) {
	router, _ := newTenantRouter()

	tests := []string{"not-a-uuid", "00000000-0000-0000-0000-000000000000"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/clients", nil)
			req.Header.Set(TenantHeader, raw)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRequireTenant_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(RequireTenantWithConfig(TenantConfig{
		SkipPaths:        []string{"/system/health"},
		SkipPathPrefixes: []string{"/admin/"},
	}))
	router.GET("/system/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/admin/backups", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/backups", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTenantID_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetTenantID(c)
	assert.False(t, ok)
}
