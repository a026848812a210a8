package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rerun-tv/rerun/internal/broadcast"
	"github.com/rerun-tv/rerun/internal/db"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status   string   `json:"status"`
	Database string   `json:"database"`
	Channels []string `json:"channels"`
	Time     string   `json:"time"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db       *db.DB
	resolver *broadcast.Resolver
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database *db.DB, resolver *broadcast.Resolver) *HealthHandler {
	return &HealthHandler{db: database, resolver: resolver}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   "ok",
		Channels: h.resolver.Channels(),
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Database = "healthy"
	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB, resolver *broadcast.Resolver) {
	handler := NewHealthHandler(database, resolver)
	apiGroup.GET("/health", handler.Check)
}
