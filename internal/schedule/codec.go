package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/models"
)

// persistedEntry is the year-agnostic on-disk form of a ScheduleEntry.
// Start and end carry no year; end is stored for inspection only and is
// always recomputed from the media duration on load.
type persistedEntry struct {
	Start        string            `json:"start"` // "MM-DD HH:MM:SS"
	End          string            `json:"end"`   // "MM-DD HH:MM:SS"
	DayOfYear    int               `json:"dayOfYear"`
	MonthDay     string            `json:"monthDay"`
	TimeOfDay    string            `json:"timeOfDay"`
	Media        *models.MediaFile `json:"mediaFile"`
	IsCommercial bool              `json:"isCommercial"`
}

// persistedDay is the on-disk form of a DaySchedule
type persistedDay struct {
	ChannelID string           `json:"channelId"`
	Date      string           `json:"date"`
	Entries   []persistedEntry `json:"entries"`
}

// SaveFile serializes a generated year of day schedules to path in the
// year-agnostic encoding. The parent directory is created if needed.
func SaveFile(path string, days []*models.DaySchedule) error {
	persisted := make([]persistedDay, 0, len(days))
	for _, day := range days {
		p := persistedDay{
			ChannelID: day.ChannelID,
			Date:      day.Date,
			Entries:   make([]persistedEntry, 0, len(day.Entries)),
		}
		for _, entry := range day.Entries {
			p.Entries = append(p.Entries, persistedEntry{
				Start:        ClockTimeOf(entry.Start).String(),
				End:          ClockTimeOf(entry.End).String(),
				DayOfYear:    entry.DayOfYear,
				MonthDay:     entry.MonthDay,
				TimeOfDay:    entry.TimeOfDay,
				Media:        entry.Media,
				IsCommercial: entry.IsCommercial,
			})
		}
		persisted = append(persisted, p)
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create schedule directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}

	logger.Log.Info().
		Str("path", path).
		Int("days", len(days)).
		Msg("Schedule saved")

	return nil
}

// LoadFile reads a persisted year-agnostic schedule and re-anchors every
// entry onto the target year. Day-of-year is the authoritative date key;
// the persisted time of day supplies the clock, and every end instant is
// recomputed as start plus the media duration. Any malformed entry fails
// the whole file: the caller treats that as a per-channel load failure.
func LoadFile(path string, targetYear int, loc *time.Location) ([]*models.DaySchedule, error) {
	if loc == nil {
		loc = time.Local
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var persisted []persistedDay
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("failed to decode schedule file %s: %w", path, err)
	}

	days := make([]*models.DaySchedule, 0, len(persisted))
	for di, p := range persisted {
		day := &models.DaySchedule{
			ChannelID: p.ChannelID,
			Entries:   make([]*models.ScheduleEntry, 0, len(p.Entries)),
		}

		for ei, pe := range p.Entries {
			clock, err := ParseClockTime(pe.Start)
			if err != nil {
				return nil, fmt.Errorf("day %d entry %d: %w", di, ei, err)
			}
			if pe.Media == nil || pe.Media.Duration <= 0 {
				return nil, fmt.Errorf("day %d entry %d: missing or zero-duration media", di, ei)
			}

			var start time.Time
			if pe.DayOfYear >= 1 && pe.DayOfYear <= daysPerYear {
				start = AnchorDayOfYear(targetYear, pe.DayOfYear, clock, loc)
			} else {
				// Older files without dayOfYear anchor by month-day
				start = clock.Anchor(targetYear, loc)
			}

			day.Entries = append(day.Entries,
				models.NewScheduleEntry(p.ChannelID, start, pe.Media, pe.IsCommercial))
		}

		if len(day.Entries) > 0 {
			day.Date = models.DateKey(day.Entries[0].Start)
		} else {
			day.Date = p.Date
		}
		days = append(days, day)
	}

	return days, nil
}
