// Package schedule implements the virtual broadcast scheduling engine: it
// generates deterministic, year-long, gap-filling program grids per channel,
// mixing long-form content with commercial breaks, and persists them in a
// year-agnostic representation so one generated grid can repeat across
// calendar years.
package schedule

import (
	"math/rand"
	"time"

	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/models"
)

const (
	// daysPerYear is fixed at 365 regardless of leap years; day-of-year is
	// the authoritative re-anchoring key, so a 365-day grid covers any
	// target year without invalid dates
	daysPerYear = 365

	// maxBreakEntries caps a single commercial break even when the catalog
	// cannot reach the configured minimum duration
	maxBreakEntries = 10
)

// Generator produces year-long program grids for configured channels.
// It is pure and offline: catalogs are read-only inputs, and all selection
// state is local to a single GenerateYear run.
type Generator struct {
	cfg         *config.Config
	content     map[string][]*models.MediaFile // keyed by channel id
	commercials map[string][]*models.MediaFile // keyed by decade
	rng         *rand.Rand
	loc         *time.Location
}

// NewGenerator creates a grid generator over the given catalogs. A nil rng
// falls back to a time-seeded source; tests pass a seeded one for
// deterministic output. A nil loc falls back to the local timezone.
func NewGenerator(cfg *config.Config, content, commercials map[string][]*models.MediaFile, rng *rand.Rand, loc *time.Location) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- scheduling variety, not crypto
	}
	if loc == nil {
		loc = time.Local
	}
	return &Generator{
		cfg:         cfg,
		content:     content,
		commercials: commercials,
		rng:         rng,
		loc:         loc,
	}
}

// GenerateYear produces one DaySchedule per calendar day of the year for a
// channel, each holding a contiguous, non-overlapping entry sequence that
// starts at local midnight and covers the day. The final entry of a day may
// overhang past midnight; that overhang is accepted and not reconciled with
// the next day's grid.
func (g *Generator) GenerateYear(year int, channelID string) ([]*models.DaySchedule, error) {
	channel, ok := g.cfg.Channel(channelID)
	if !ok {
		return nil, ErrUnknownChannel
	}
	if len(g.content[channelID]) == 0 {
		return nil, ErrNoContent
	}

	logger.Log.Info().
		Str("channel_id", channelID).
		Int("year", year).
		Int("content_items", len(g.content[channelID])).
		Int("commercials", len(g.commercials[channel.Decade])).
		Msg("Generating year-long schedule")

	st := &selectionState{rng: g.rng}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, g.loc)

	days := make([]*models.DaySchedule, 0, daysPerYear)
	for i := 0; i < daysPerYear; i++ {
		date := start.AddDate(0, 0, i)
		days = append(days, g.generateDay(channel, date, st))
	}

	logger.Log.Info().
		Str("channel_id", channelID).
		Int("days", len(days)).
		Msg("Year-long schedule generated")

	return days, nil
}

// generateDay fills one calendar day with content entries, inserting a
// commercial break after each content entry once commercialInterval minutes
// have elapsed since the last break.
func (g *Generator) generateDay(channel *models.Channel, date time.Time, st *selectionState) *models.DaySchedule {
	cursor := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, g.loc)
	endOfDay := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, g.loc)

	interval := time.Duration(g.cfg.Broadcast.CommercialInterval) * time.Minute
	lastBreakEnd := cursor

	var entries []*models.ScheduleEntry
	for cursor.Before(endOfDay) {
		media := g.selectContent(channel, date, st)
		if media == nil {
			// Degraded mode: the day ends short rather than aborting the run
			logger.Log.Warn().
				Str("channel_id", channel.ID).
				Str("date", models.DateKey(date)).
				Time("cursor", cursor).
				Msg("No content available, ending day early")
			break
		}

		entry := models.NewScheduleEntry(channel.ID, cursor, media, false)
		entries = append(entries, entry)
		cursor = entry.End

		if cursor.Sub(lastBreakEnd) >= interval && cursor.Before(endOfDay) {
			breakEntries := g.commercialBreak(channel, cursor, st)
			if len(breakEntries) > 0 {
				entries = append(entries, breakEntries...)
				cursor = breakEntries[len(breakEntries)-1].End
				lastBreakEnd = cursor
			}
		}
	}

	return &models.DaySchedule{
		ChannelID: channel.ID,
		Date:      models.DateKey(date),
		Entries:   entries,
	}
}

// commercialBreak accumulates commercial entries drawn at random without
// replacement from the decade's catalog until the configured minimum break
// duration is reached or the entry cap hits. Once every distinct spot has
// aired within the break, the used set resets so small catalogs can still
// fill a break.
func (g *Generator) commercialBreak(channel *models.Channel, start time.Time, st *selectionState) []*models.ScheduleEntry {
	catalog := g.commercials[channel.Decade]
	if len(catalog) == 0 {
		logger.Log.Warn().
			Str("channel_id", channel.ID).
			Str("decade", channel.Decade).
			Msg("No commercials available for decade")
		return nil
	}

	minDuration := int64(g.cfg.Broadcast.CommercialDuration) * 60
	used := make(map[int]bool, len(catalog))

	var entries []*models.ScheduleEntry
	var total int64
	cursor := start

	for total < minDuration && len(entries) < maxBreakEntries {
		if len(used) >= len(catalog) {
			used = make(map[int]bool, len(catalog))
		}

		idx := st.rng.Intn(len(catalog))
		for used[idx] {
			idx = st.rng.Intn(len(catalog))
		}
		used[idx] = true

		spot := catalog[idx]
		entry := models.NewScheduleEntry(channel.ID, cursor, spot, true)
		entries = append(entries, entry)
		total += spot.Duration
		cursor = entry.End
	}

	logger.Log.Debug().
		Str("channel_id", channel.ID).
		Int("spots", len(entries)).
		Int64("seconds", total).
		Msg("Commercial break synthesized")

	return entries
}
