package api

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rerun-tv/rerun/internal/broadcast"
)

// SetTimeRequest represents a request to override a channel's clock
type SetTimeRequest struct {
	ChannelID string    `json:"channelId" binding:"required"`
	Time      time.Time `json:"time" binding:"required"`
}

// ClearTimeRequest represents a request to clear a channel's clock override
type ClearTimeRequest struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// DevHandler exposes the dev time override controls. Overrides shadow the
// wall clock for every resolution query on a channel, which makes grid
// behavior testable without waiting on real time.
type DevHandler struct {
	resolver *broadcast.Resolver
}

// NewDevHandler creates a new dev handler instance
func NewDevHandler(resolver *broadcast.Resolver) *DevHandler {
	return &DevHandler{resolver: resolver}
}

// SetTime handles POST /api/dev/set-time
func (h *DevHandler) SetTime(c *gin.Context) {
	if !isLoopback(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Dev mode only available on localhost",
		})
		return
	}

	var req SetTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "channelId and time are required: " + err.Error(),
		})
		return
	}

	h.resolver.SetTimeOverride(req.ChannelID, req.Time)
	c.JSON(http.StatusOK, gin.H{"success": true, "time": req.Time.Format(time.RFC3339)})
}

// ClearTime handles POST /api/dev/clear-time
func (h *DevHandler) ClearTime(c *gin.Context) {
	if !isLoopback(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Dev mode only available on localhost",
		})
		return
	}

	var req ClearTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "channelId is required: " + err.Error(),
		})
		return
	}

	h.resolver.ClearTimeOverride(req.ChannelID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// isLoopback reports whether the request originates from localhost
func isLoopback(c *gin.Context) bool {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// SetupDevRoutes registers the dev time override routes
func SetupDevRoutes(apiGroup *gin.RouterGroup, resolver *broadcast.Resolver) {
	handler := NewDevHandler(resolver)
	apiGroup.POST("/dev/set-time", handler.SetTime)
	apiGroup.POST("/dev/clear-time", handler.ClearTime)
}
