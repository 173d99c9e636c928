package handler

import (
	"context"

	"github.com/crm/backend/internal/infrastructure/backup"
	"github.com/gin-gonic/gin"
)

// BackupRunner abstracts the database backup service
type BackupRunner interface {
	Run(ctx context.Context) (string, error)
	List(ctx context.Context) ([]backup.StoredObject, error)
}

// BackupHandler exposes the on-demand database backup endpoint
type BackupHandler struct {
	BaseHandler
	backups BackupRunner
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backups BackupRunner) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// RegisterRoutes registers backup routes on the API group
func (h *BackupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/backups", h.Run)
	rg.GET("/admin/backups", h.List)
}

// BackupResponse reports where the dump was stored
type BackupResponse struct {
	Key string `json:"key"`
}

// Run handles POST /admin/backups. The dump runs synchronously; the
// response carries the object key once the upload finished.
func (h *BackupHandler) Run(c *gin.Context) {
	key, err := h.backups.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, BackupResponse{Key: key})
}

// List handles GET /admin/backups
func (h *BackupHandler) List(c *gin.Context) {
	objects, err := h.backups.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if objects == nil {
		objects = []backup.StoredObject{}
	}

	h.Success(c, objects)
}
