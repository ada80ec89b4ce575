package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/infrastructure/persistence"
)

// HealthHandler reports service liveness and readiness
type HealthHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *persistence.Database, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports liveness
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready reports readiness, including database connectivity
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"database": gin.H{
					"status": "down",
				},
			})
			return
		}
	}

	h.Success(c, gin.H{
		"status": "ready",
	})
}
