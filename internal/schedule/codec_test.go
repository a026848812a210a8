package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerun-tv/rerun/internal/models"
)

func buildTestDay(t *testing.T, channelID string, start time.Time, durations ...int64) *models.DaySchedule {
	t.Helper()

	day := &models.DaySchedule{
		ChannelID: channelID,
		Date:      models.DateKey(start),
	}
	cursor := start
	for i, duration := range durations {
		media := newTestMedia("file.mp4", duration, models.MediaKindContent)
		if i%2 == 1 {
			media.Kind = models.MediaKindCommercial
		}
		entry := models.NewScheduleEntry(channelID, cursor, media, media.IsCommercial())
		day.Entries = append(day.Entries, entry)
		cursor = entry.End
	}
	return day
}

func TestSaveLoad_RoundTripIntoDifferentYear(t *testing.T) {
	start := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildTestDay(t, "80s-tv", start, 1800, 30, 900)

	path := filepath.Join(t.TempDir(), "80s-tv.json")
	require.NoError(t, SaveFile(path, []*models.DaySchedule{day}))

	loaded, err := LoadFile(path, 2030, time.UTC)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Len(t, loaded[0].Entries, 3)

	assert.Equal(t, "2030-07-04", loaded[0].Date)

	cursor := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	for i, entry := range loaded[0].Entries {
		original := day.Entries[i]

		assert.Equal(t, cursor, entry.Start, "entry %d start", i)
		assert.Equal(t, entry.Start.Add(time.Duration(entry.Media.Duration)*time.Second), entry.End,
			"entry %d end must be start plus duration", i)
		assert.Equal(t, original.Media.ID, entry.Media.ID)
		assert.Equal(t, original.Media.Duration, entry.Media.Duration)
		assert.Equal(t, original.IsCommercial, entry.IsCommercial)
		assert.Equal(t, original.TimeOfDay, entry.TimeOfDay)
		assert.Equal(t, original.DayOfYear, entry.DayOfYear)

		cursor = entry.End
	}
}

func TestLoad_Feb29ReanchorsByDayOfYear(t *testing.T) {
	// Day 60 of leap year 2024 is Feb 29
	start := time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)
	day := buildTestDay(t, "80s-tv", start, 1800)
	require.Equal(t, 60, day.Entries[0].DayOfYear)

	path := filepath.Join(t.TempDir(), "80s-tv.json")
	require.NoError(t, SaveFile(path, []*models.DaySchedule{day}))

	loaded, err := LoadFile(path, 2025, time.UTC)
	require.NoError(t, err)
	require.Len(t, loaded[0].Entries, 1)

	// Day 60 of 2025 is Mar 1; the grid stays gap-free with no invalid date
	entry := loaded[0].Entries[0]
	assert.Equal(t, time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC), entry.Start)
	assert.Equal(t, "2025-03-01", loaded[0].Date)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), 2025, time.UTC)
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadFile(path, 2025, time.UTC)
	assert.Error(t, err)
}

func TestLoad_MalformedEntryFailsWholeFile(t *testing.T) {
	raw := `[{
		"channelId": "80s-tv",
		"date": "2025-07-04",
		"entries": [{
			"start": "garbage",
			"end": "07-04 00:30:00",
			"dayOfYear": 185,
			"monthDay": "07-04",
			"timeOfDay": "00:00:00",
			"mediaFile": {"id": "00000000-0000-0000-0000-000000000001", "path": "/m/a.mp4", "filename": "a.mp4", "duration": 1800, "type": "content"},
			"isCommercial": false
		}]
	}]`
	path := filepath.Join(t.TempDir(), "bad-entry.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := LoadFile(path, 2025, time.UTC)
	assert.Error(t, err)
}

func TestLoad_ZeroDurationMediaRejected(t *testing.T) {
	raw := `[{
		"channelId": "80s-tv",
		"date": "2025-07-04",
		"entries": [{
			"start": "07-04 00:00:00",
			"end": "07-04 00:30:00",
			"dayOfYear": 185,
			"monthDay": "07-04",
			"timeOfDay": "00:00:00",
			"mediaFile": {"id": "00000000-0000-0000-0000-000000000001", "path": "/m/a.mp4", "filename": "a.mp4", "duration": 0, "type": "content"},
			"isCommercial": false
		}]
	}]`
	path := filepath.Join(t.TempDir(), "zero-duration.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := LoadFile(path, 2025, time.UTC)
	assert.Error(t, err)
}

func TestSave_PersistsYearAgnosticShape(t *testing.T) {
	start := time.Date(2025, time.December, 24, 18, 0, 0, 0, time.UTC)
	day := buildTestDay(t, "90s-tv", start, 600)

	path := filepath.Join(t.TempDir(), "90s-tv.json")
	require.NoError(t, SaveFile(path, []*models.DaySchedule{day}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"start": "12-24 18:00:00"`)
	assert.Contains(t, content, `"dayOfYear": 358`)
	assert.NotContains(t, content, "2025-12-24T", "persisted starts must not carry a year")
}
