package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailops/backend/internal/infrastructure/persistence"
)

// SystemHandler exposes health and readiness endpoints.
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
	}
}

// Health reports service liveness and database connectivity. The endpoint
// returns 503 when the database is unreachable so load balancers stop
// routing to this instance.
func (h *SystemHandler) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbStatus := "up"
	if err := h.db.Ping(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbStatus = "down"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
