// Package broadcast resolves "what is airing right now, and at what offset"
// against grids loaded at startup. Grids are immutable after load, so
// resolution is a stateless read that many requests can run concurrently;
// the only mutable shared state is the per-channel dev time override map.
package broadcast

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/models"
	"github.com/rerun-tv/rerun/internal/schedule"
)

// Resolver answers resolution queries for all loaded channels. On-air state
// is never cached: it is derived fresh from the effective time on every
// query, which keeps dev overrides and server restarts consistent.
type Resolver struct {
	loc       *time.Location
	schedules map[string]map[string]*models.DaySchedule // channel id -> date key -> day

	mu        sync.RWMutex
	overrides map[string]time.Time
}

// NewResolver creates an empty resolver. A nil loc falls back to the local
// timezone, which must match the timezone grids were generated for.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{
		loc:       loc,
		schedules: make(map[string]map[string]*models.DaySchedule),
		overrides: make(map[string]time.Time),
	}
}

// LoadChannel indexes a channel's day schedules by date key. Intended to be
// called during startup, before the resolver starts serving queries.
func (r *Resolver) LoadChannel(channelID string, days []*models.DaySchedule) {
	byDate := make(map[string]*models.DaySchedule, len(days))
	for _, day := range days {
		byDate[day.Date] = day
	}
	r.schedules[channelID] = byDate

	logger.Log.Info().
		Str("channel_id", channelID).
		Int("days", len(days)).
		Msg("Channel schedule loaded")
}

// LoadDir loads persisted grids for the given channels from
// <dir>/<channelID>.json, re-anchored onto targetYear. A channel whose file
// is missing or malformed is skipped and stays unresolvable; other channels
// load normally. Returns the number of channels loaded.
func (r *Resolver) LoadDir(dir string, channelIDs []string, targetYear int) int {
	loaded := 0
	for _, channelID := range channelIDs {
		path := filepath.Join(dir, channelID+".json")
		days, err := schedule.LoadFile(path, targetYear, r.loc)
		if err != nil {
			logger.Log.Error().
				Err(err).
				Str("channel_id", channelID).
				Str("path", path).
				Msg("Failed to load channel schedule, channel will be off air")
			continue
		}
		r.LoadChannel(channelID, days)
		loaded++
	}
	return loaded
}

// Channels returns the ids of all channels with a loaded schedule, sorted
func (r *Resolver) Channels() []string {
	ids := make([]string, 0, len(r.schedules))
	for id := range r.schedules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EffectiveTime returns the instant resolution queries use for a channel:
// the dev override when set, otherwise the wall clock.
func (r *Resolver) EffectiveTime(channelID string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.overrides[channelID]; ok {
		return t
	}
	return time.Now().In(r.loc)
}

// CurrentEntry resolves which entry is airing on a channel right now
func (r *Resolver) CurrentEntry(channelID string) (*models.ScheduleEntry, error) {
	return r.CurrentEntryAt(channelID, r.EffectiveTime(channelID))
}

// CurrentEntryAt resolves which entry is airing on a channel at an explicit
// instant, shadowing both the wall clock and any dev override. Resolution is
// a linear scan for the first entry whose half-open [start, end) window
// contains the instant.
func (r *Resolver) CurrentEntryAt(channelID string, now time.Time) (*models.ScheduleEntry, error) {
	day, err := r.dayFor(channelID, now)
	if err != nil {
		return nil, err
	}

	for _, entry := range day.Entries {
		if entry.Contains(now) {
			return entry, nil
		}
	}

	return nil, fmt.Errorf("%w: no entry at %s on %s", ErrOffAir, now.Format(time.RFC3339), channelID)
}

// SeekOffset returns how many whole seconds into the entry playback should
// be, per the channel's effective time. This is what makes joining
// mid-broadcast behave like live TV. Never negative.
func (r *Resolver) SeekOffset(entry *models.ScheduleEntry) int64 {
	return r.SeekOffsetAt(entry, r.EffectiveTime(entry.ChannelID))
}

// SeekOffsetAt returns the seek offset for an entry at an explicit instant
func (r *Resolver) SeekOffsetAt(entry *models.ScheduleEntry, now time.Time) int64 {
	offset := int64(now.Sub(entry.Start).Seconds())
	if offset < 0 {
		return 0
	}
	return offset
}

// Upcoming returns up to count entries of the current day with a start
// after the channel's effective time. It never rolls into the next day, so
// late in the evening fewer than count entries (or none) come back.
func (r *Resolver) Upcoming(channelID string, count int) []*models.ScheduleEntry {
	now := r.EffectiveTime(channelID)
	day, err := r.dayFor(channelID, now)
	if err != nil {
		return nil
	}

	var upcoming []*models.ScheduleEntry
	for _, entry := range day.Entries {
		if entry.Start.After(now) {
			upcoming = append(upcoming, entry)
			if len(upcoming) >= count {
				break
			}
		}
	}
	return upcoming
}

// DaySchedule returns a channel's full grid for the date containing t
func (r *Resolver) DaySchedule(channelID string, t time.Time) (*models.DaySchedule, error) {
	return r.dayFor(channelID, t)
}

// SetTimeOverride replaces "now" for all subsequent resolution queries on a
// channel until cleared. In-flight resolutions are unaffected.
func (r *Resolver) SetTimeOverride(channelID string, t time.Time) {
	r.mu.Lock()
	r.overrides[channelID] = t.In(r.loc)
	r.mu.Unlock()

	logger.Log.Info().
		Str("channel_id", channelID).
		Time("override", t).
		Msg("Dev time override set")
}

// ClearTimeOverride removes a channel's dev time override
func (r *Resolver) ClearTimeOverride(channelID string) {
	r.mu.Lock()
	delete(r.overrides, channelID)
	r.mu.Unlock()

	logger.Log.Info().
		Str("channel_id", channelID).
		Msg("Dev time override cleared")
}

// dayFor looks up the channel's day schedule containing t
func (r *Resolver) dayFor(channelID string, t time.Time) (*models.DaySchedule, error) {
	byDate, ok := r.schedules[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSchedule, channelID)
	}

	dateKey := models.DateKey(t.In(r.loc))
	day, ok := byDate[dateKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no grid for %s", ErrNoSchedule, channelID, dateKey)
	}
	return day, nil
}
