package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/rerun-tv/rerun/internal/broadcast"
	"github.com/rerun-tv/rerun/internal/logger"
)

// StreamHandler serves the video file behind the currently airing entry
type StreamHandler struct {
	resolver *broadcast.Resolver
}

// NewStreamHandler creates a new stream handler instance
func NewStreamHandler(resolver *broadcast.Resolver) *StreamHandler {
	return &StreamHandler{resolver: resolver}
}

// StreamCurrent handles GET /api/channel/:channel_id/stream.
// It resolves the airing entry and serves its file with byte-range support;
// the client seeks to the sync endpoint's offset to join mid-broadcast.
func (h *StreamHandler) StreamCurrent(c *gin.Context) {
	channelID := c.Param("channel_id")

	entry, err := h.resolver.CurrentEntry(channelID)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	file, err := os.Open(entry.Media.Path)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("channel_id", channelID).
			Str("path", entry.Media.Path).
			Msg("Scheduled media file not readable")
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "media_unavailable",
			Message: "Scheduled media file not found",
		})
		return
	}
	defer file.Close() // nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to stat media file",
		})
		return
	}

	c.Header("Content-Type", "video/mp4")
	// ServeContent handles Range requests, 206 responses and If-Modified-Since
	http.ServeContent(c.Writer, c.Request, entry.Media.Filename, info.ModTime(), file)
}
