package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rerun-tv/rerun/internal/broadcast"
	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/models"
)

// EntryResponse represents a schedule entry in API responses
type EntryResponse struct {
	ID           string            `json:"id"`
	ChannelID    string            `json:"channelId"`
	Title        string            `json:"title"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	IsCommercial bool              `json:"isCommercial"`
	Media        *models.MediaFile `json:"mediaFile,omitempty"`
}

// StreamInfoResponse is returned by the current-playback endpoint
type StreamInfoResponse struct {
	CurrentEntry *EntryResponse `json:"currentEntry"`
	Progress     int64          `json:"progress"`  // seconds into the entry
	Remaining    int64          `json:"remaining"` // seconds until the entry ends
}

// SyncResponse carries what the client polling loop needs to detect content
// changes or drift
type SyncResponse struct {
	Entry        *EntryResponse `json:"entry"`
	SeekPosition int64          `json:"seekPosition"`
	ServerTime   time.Time      `json:"serverTime"`
}

// ChannelHandler handles channel and resolution API requests
type ChannelHandler struct {
	cfg      *config.Config
	resolver *broadcast.Resolver
}

// NewChannelHandler creates a new channel handler instance
func NewChannelHandler(cfg *config.Config, resolver *broadcast.Resolver) *ChannelHandler {
	return &ChannelHandler{
		cfg:      cfg,
		resolver: resolver,
	}
}

// toEntryResponse converts a schedule entry to API response format
func toEntryResponse(entry *models.ScheduleEntry, includeMedia bool) *EntryResponse {
	resp := &EntryResponse{
		ID:           entry.ID,
		ChannelID:    entry.ChannelID,
		Title:        entry.Media.DisplayTitle(),
		StartTime:    entry.Start,
		EndTime:      entry.End,
		IsCommercial: entry.IsCommercial,
	}
	if includeMedia {
		resp.Media = entry.Media
	}
	return resp
}

// ListChannels handles GET /api/channels
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	c.JSON(http.StatusOK, h.cfg.Broadcast.Channels)
}

// GetCurrent handles GET /api/channel/:channel_id/current
func (h *ChannelHandler) GetCurrent(c *gin.Context) {
	channelID := c.Param("channel_id")

	entry, err := h.resolver.CurrentEntry(channelID)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	progress := h.resolver.SeekOffset(entry)
	remaining := entry.Media.Duration - progress
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, StreamInfoResponse{
		CurrentEntry: toEntryResponse(entry, true),
		Progress:     progress,
		Remaining:    remaining,
	})
}

// GetSync handles GET /api/channel/:channel_id/sync.
// Clients poll this to detect entry changes and drift beyond tolerance.
func (h *ChannelHandler) GetSync(c *gin.Context) {
	channelID := c.Param("channel_id")

	entry, err := h.resolver.CurrentEntry(channelID)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Entry:        toEntryResponse(entry, false),
		SeekPosition: h.resolver.SeekOffset(entry),
		ServerTime:   time.Now().UTC(),
	})
}

// GetUpcoming handles GET /api/channel/:channel_id/upcoming
func (h *ChannelHandler) GetUpcoming(c *gin.Context) {
	channelID := c.Param("channel_id")

	count := 5
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "count must be a positive integer",
			})
			return
		}
		count = parsed
	}

	upcoming := h.resolver.Upcoming(channelID, count)
	entries := make([]*EntryResponse, 0, len(upcoming))
	for _, entry := range upcoming {
		entries = append(entries, toEntryResponse(entry, true))
	}

	c.JSON(http.StatusOK, entries)
}

// GetDaySchedule handles GET /api/channel/:channel_id/schedule?date=YYYY-MM-DD
func (h *ChannelHandler) GetDaySchedule(c *gin.Context) {
	channelID := c.Param("channel_id")

	target := h.resolver.EffectiveTime(channelID)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, target.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "date must be YYYY-MM-DD",
			})
			return
		}
		target = parsed
	}

	day, err := h.resolver.DaySchedule(channelID, target)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, day)
}

// respondResolutionError maps resolver errors to API responses. Off-air and
// missing-schedule are normal signals the client turns into a fallback
// experience, not server failures.
func respondResolutionError(c *gin.Context, err error) {
	switch {
	case broadcast.IsOffAir(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "off_air",
			Message: "No content currently airing",
		})
	case broadcast.IsNoSchedule(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "no_schedule",
			Message: "No schedule loaded for channel",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to resolve channel state",
		})
	}
}

// SetupChannelRoutes registers channel resolution routes
func SetupChannelRoutes(apiGroup *gin.RouterGroup, cfg *config.Config, resolver *broadcast.Resolver) {
	handler := NewChannelHandler(cfg, resolver)
	streamHandler := NewStreamHandler(resolver)

	apiGroup.GET("/channels", handler.ListChannels)

	channelGroup := apiGroup.Group("/channel/:channel_id")
	channelGroup.GET("/current", handler.GetCurrent)
	channelGroup.GET("/sync", handler.GetSync)
	channelGroup.GET("/upcoming", handler.GetUpcoming)
	channelGroup.GET("/schedule", handler.GetDaySchedule)
	channelGroup.GET("/stream", streamHandler.StreamCurrent)
}
