//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerun-tv/rerun/internal/api"
	"github.com/rerun-tv/rerun/internal/broadcast"
	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/models"
)

// gridStart anchors all test schedules on a fixed day so resolution can be
// driven entirely through dev time overrides.
var gridStart = time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) (*gin.Engine, *broadcast.Resolver) {
	t.Helper()

	cfg := &config.Config{
		Broadcast: config.BroadcastConfig{
			Channels: []models.Channel{
				{ID: "80s-tv", Name: "80s TV", Decade: "80s", MediaFolder: "80s/tv"},
			},
		},
	}

	day := &models.DaySchedule{
		ChannelID: "80s-tv",
		Date:      models.DateKey(gridStart),
	}
	cursor := gridStart
	for i := 0; i < 48; i++ {
		media := models.NewMediaFile("/media/80s/tv/e"+strconv.Itoa(i)+".mp4", "e.mp4", 1800, models.MediaKindContent)
		entry := models.NewScheduleEntry("80s-tv", cursor, media, false)
		day.Entries = append(day.Entries, entry)
		cursor = entry.End
	}

	resolver := broadcast.NewResolver(time.UTC)
	resolver.LoadChannel("80s-tv", []*models.DaySchedule{day})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiGroup := router.Group("/api")
	api.SetupChannelRoutes(apiGroup, cfg, resolver)
	api.SetupDevRoutes(apiGroup, resolver)

	return router, resolver
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChannelAPI(t *testing.T) {
	router, resolver := setupTestServer(t)

	t.Run("ListChannels", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/channels", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var channels []models.Channel
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &channels))
		require.Len(t, channels, 1)
		assert.Equal(t, "80s-tv", channels[0].ID)
	})

	t.Run("Current_WithOverride", func(t *testing.T) {
		resolver.SetTimeOverride("80s-tv", gridStart.Add(10*time.Hour+5*time.Minute))
		defer resolver.ClearTimeOverride("80s-tv")

		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/current", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var info api.StreamInfoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
		require.NotNil(t, info.CurrentEntry)
		// 10:05 is 5 minutes into the 10:00 entry
		assert.Equal(t, gridStart.Add(10*time.Hour), info.CurrentEntry.StartTime)
		assert.Equal(t, int64(300), info.Progress)
		assert.Equal(t, int64(1500), info.Remaining)
		require.NotNil(t, info.CurrentEntry.Media)
		assert.False(t, info.CurrentEntry.IsCommercial)
	})

	t.Run("Sync_ReportsSeekPosition", func(t *testing.T) {
		resolver.SetTimeOverride("80s-tv", gridStart.Add(30*time.Second))
		defer resolver.ClearTimeOverride("80s-tv")

		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/sync", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var sync api.SyncResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sync))
		require.NotNil(t, sync.Entry)
		assert.Equal(t, int64(30), sync.SeekPosition)
		assert.False(t, sync.ServerTime.IsZero())
	})

	t.Run("Upcoming_RespectsCount", func(t *testing.T) {
		resolver.SetTimeOverride("80s-tv", gridStart.Add(15*time.Minute))
		defer resolver.ClearTimeOverride("80s-tv")

		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/upcoming?count=3", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var entries []api.EntryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 3)
		assert.Equal(t, gridStart.Add(30*time.Minute), entries[0].StartTime)
	})

	t.Run("Upcoming_InvalidCount", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/upcoming?count=zero", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Schedule_ByDate", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/schedule?date=2030-07-04", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var day models.DaySchedule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
		assert.Equal(t, "2030-07-04", day.Date)
		assert.Len(t, day.Entries, 48)
	})

	t.Run("Schedule_MissingDate", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/schedule?date=2031-01-01", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "no_schedule", resp.Error)
	})

	t.Run("Current_UnknownChannel", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/channel/nope/current", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "no_schedule", resp.Error)
	})
}

func TestDevAPI(t *testing.T) {
	router, resolver := setupTestServer(t)

	t.Run("SetTime_DrivesResolution", func(t *testing.T) {
		body := map[string]interface{}{
			"channelId": "80s-tv",
			"time":      gridStart.Add(10 * time.Hour).Format(time.RFC3339),
		}
		w := doJSON(t, router, http.MethodPost, "/api/dev/set-time", body, "127.0.0.1:50000")
		assert.Equal(t, http.StatusOK, w.Code)

		cw := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/current", nil, "")
		assert.Equal(t, http.StatusOK, cw.Code)

		var info api.StreamInfoResponse
		require.NoError(t, json.Unmarshal(cw.Body.Bytes(), &info))
		assert.Equal(t, gridStart.Add(10*time.Hour), info.CurrentEntry.StartTime)
	})

	t.Run("ClearTime_RestoresWallClock", func(t *testing.T) {
		resolver.SetTimeOverride("80s-tv", gridStart)

		body := map[string]interface{}{"channelId": "80s-tv"}
		w := doJSON(t, router, http.MethodPost, "/api/dev/clear-time", body, "127.0.0.1:50000")
		assert.Equal(t, http.StatusOK, w.Code)

		// The wall clock is not in 2030, so the channel has no grid for today
		cw := doJSON(t, router, http.MethodGet, "/api/channel/80s-tv/current", nil, "")
		assert.Equal(t, http.StatusNotFound, cw.Code)
	})

	t.Run("SetTime_RejectsNonLoopback", func(t *testing.T) {
		body := map[string]interface{}{
			"channelId": "80s-tv",
			"time":      gridStart.Format(time.RFC3339),
		}
		w := doJSON(t, router, http.MethodPost, "/api/dev/set-time", body, "203.0.113.9:41000")
		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "forbidden", resp.Error)
	})

	t.Run("SetTime_MissingFields", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/dev/set-time",
			map[string]interface{}{"channelId": "80s-tv"}, "127.0.0.1:50000")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
