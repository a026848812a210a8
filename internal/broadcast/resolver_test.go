package broadcast

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerun-tv/rerun/internal/models"
	"github.com/rerun-tv/rerun/internal/schedule"
)

// Helper to build a day schedule of back-to-back entries starting at start
func buildDay(channelID string, start time.Time, durations ...int64) *models.DaySchedule {
	day := &models.DaySchedule{
		ChannelID: channelID,
		Date:      models.DateKey(start),
	}
	cursor := start
	for i, duration := range durations {
		media := models.NewMediaFile(
			filepath.Join("/media", channelID, "entry-"+strconv.Itoa(i)+".mp4"),
			"entry.mp4", duration, models.MediaKindContent)
		entry := models.NewScheduleEntry(channelID, cursor, media, false)
		day.Entries = append(day.Entries, entry)
		cursor = entry.End
	}
	return day
}

func newLoadedResolver(t *testing.T, channelID string, day *models.DaySchedule) *Resolver {
	t.Helper()
	r := NewResolver(time.UTC)
	r.LoadChannel(channelID, []*models.DaySchedule{day})
	return r
}

func TestCurrentEntryAt_FindsContainingEntry(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800, 1800, 1800)
	r := newLoadedResolver(t, "x", day)

	entry, err := r.CurrentEntryAt("x", start.Add(45*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, day.Entries[1].ID, entry.ID)
}

func TestCurrentEntryAt_HalfOpenBoundaries(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800, 1800)
	r := newLoadedResolver(t, "x", day)

	// Exactly at an entry's end, the next entry is airing
	entry, err := r.CurrentEntryAt("x", day.Entries[0].End)
	require.NoError(t, err)
	assert.Equal(t, day.Entries[1].ID, entry.ID)

	// Exactly at start, the first entry is airing
	entry, err = r.CurrentEntryAt("x", start)
	require.NoError(t, err)
	assert.Equal(t, day.Entries[0].ID, entry.ID)
}

func TestCurrentEntryAt_OffAirAfterLastEntry(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800)
	r := newLoadedResolver(t, "x", day)

	_, err := r.CurrentEntryAt("x", start.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrOffAir)
	assert.True(t, IsOffAir(err))
}

func TestCurrentEntryAt_NoScheduleForChannel(t *testing.T) {
	r := NewResolver(time.UTC)

	_, err := r.CurrentEntryAt("ghost", time.Now())
	assert.ErrorIs(t, err, ErrNoSchedule)
	assert.True(t, IsNoSchedule(err))
}

func TestCurrentEntryAt_NoScheduleForDay(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	r := newLoadedResolver(t, "x", buildDay("x", start, 1800))

	_, err := r.CurrentEntryAt("x", start.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrNoSchedule)
}

func TestCurrentEntry_UsesTimeOverride(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800, 1800)
	r := newLoadedResolver(t, "x", day)

	r.SetTimeOverride("x", time.Date(2030, time.July, 4, 10, 0, 0, 0, time.UTC))

	entry, err := r.CurrentEntry("x")
	require.NoError(t, err)
	assert.True(t, entry.Contains(time.Date(2030, time.July, 4, 10, 0, 0, 0, time.UTC)))

	// Resolution is pure: same override, same result
	again, err := r.CurrentEntry("x")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)

	r.ClearTimeOverride("x")
	_, err = r.CurrentEntry("x")
	// Real wall clock is not in 2030, so the grid has no day for it
	assert.Error(t, err)
}

func TestSeekOffsetAt(t *testing.T) {
	start := time.Date(2030, time.July, 4, 12, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800)
	r := newLoadedResolver(t, "x", day)
	entry := day.Entries[0]

	assert.Equal(t, int64(0), r.SeekOffsetAt(entry, entry.Start))
	assert.Equal(t, int64(1), r.SeekOffsetAt(entry, entry.Start.Add(time.Second)))
	assert.Equal(t, int64(725), r.SeekOffsetAt(entry, entry.Start.Add(725*time.Second)))
	assert.Equal(t, int64(0), r.SeekOffsetAt(entry, entry.Start.Add(-10*time.Second)), "never negative")
}

func TestSeekOffset_UsesChannelOverride(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800)
	r := newLoadedResolver(t, "x", day)

	r.SetTimeOverride("x", start.Add(90*time.Second))
	assert.Equal(t, int64(90), r.SeekOffset(day.Entries[0]))
}

func TestUpcoming_TruncatesToCount(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800, 1800, 1800, 1800, 1800)
	r := newLoadedResolver(t, "x", day)

	r.SetTimeOverride("x", start.Add(10*time.Minute)) // inside entry 0

	upcoming := r.Upcoming("x", 3)
	require.Len(t, upcoming, 3)
	assert.Equal(t, day.Entries[1].ID, upcoming[0].ID)
	assert.Equal(t, day.Entries[3].ID, upcoming[2].ID)
}

func TestUpcoming_NeverRollsIntoNextDay(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	day := buildDay("x", start, 1800)
	r := newLoadedResolver(t, "x", day)

	// 23:58 with nothing left today: empty, not next day's entries
	r.SetTimeOverride("x", time.Date(2030, time.July, 4, 23, 58, 0, 0, time.UTC))
	assert.Empty(t, r.Upcoming("x", 3))
}

func TestUpcoming_UnknownChannel(t *testing.T) {
	r := NewResolver(time.UTC)
	assert.Empty(t, r.Upcoming("ghost", 5))
}

func TestChannels_SortedIDs(t *testing.T) {
	start := time.Date(2030, time.July, 4, 0, 0, 0, 0, time.UTC)
	r := NewResolver(time.UTC)
	r.LoadChannel("90s-movies", []*models.DaySchedule{buildDay("90s-movies", start, 600)})
	r.LoadChannel("80s-tv", []*models.DaySchedule{buildDay("80s-tv", start, 600)})

	assert.Equal(t, []string{"80s-tv", "90s-movies"}, r.Channels())
}

func TestLoadDir_SkipsMalformedChannelOnly(t *testing.T) {
	dir := t.TempDir()

	start := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	good := buildDay("good", start, 1800)
	require.NoError(t, schedule.SaveFile(filepath.Join(dir, "good.json"), []*models.DaySchedule{good}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{broken"), 0o644))

	r := NewResolver(time.UTC)
	loaded := r.LoadDir(dir, []string{"good", "bad", "absent"}, 2030)

	assert.Equal(t, 1, loaded)
	assert.Equal(t, []string{"good"}, r.Channels())

	// The good channel re-anchored onto 2030 resolves normally
	entry, err := r.CurrentEntryAt("good", time.Date(2030, time.July, 4, 0, 10, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, entry.IsCommercial)
}
