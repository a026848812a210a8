package schedule

import (
	"math/rand"
	"time"

	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/models"
)

// selectionState carries the mutable state of content selection for one
// channel across an entire year-generation run. The round-robin cursor is
// monotonically increasing and never resets per day, which guarantees full
// catalog rotation over time. Threading it (and the random source)
// explicitly keeps generation deterministic under a seeded rand.
type selectionState struct {
	cursor int
	rng    *rand.Rand
}

// selectContent picks the next content item for a channel on a given date.
//
// If seasonal candidates exist for the date, one of them is picked uniformly
// at random with the window's configured weight as the probability, and the
// round-robin cursor does NOT advance. Otherwise the pick is
// content[cursor % len] and the cursor advances by one.
//
// Returns nil when the channel has no content catalog; the caller ends the
// day short.
func (g *Generator) selectContent(channel *models.Channel, date time.Time, st *selectionState) *models.MediaFile {
	content := g.content[channel.ID]
	if len(content) == 0 {
		return nil
	}

	seasonal, weight := g.seasonalCandidates(content, date)
	if len(seasonal) > 0 && st.rng.Float64() < weight {
		return seasonal[st.rng.Intn(len(seasonal))]
	}

	selected := content[st.cursor%len(content)]
	st.cursor++
	return selected
}

// seasonalCandidates returns the union of content items whose seasonal tag
// matches any window containing the date, along with the strongest matched
// window weight. Windows only bias selection; they never restrict it.
func (g *Generator) seasonalCandidates(content []*models.MediaFile, date time.Time) ([]*models.MediaFile, float64) {
	var candidates []*models.MediaFile
	var weight float64

	for tag, window := range g.cfg.Broadcast.Seasonal {
		if !inSeasonalWindow(date, window, g.loc) {
			continue
		}
		matched := false
		for _, file := range content {
			if file.SeasonalTag == tag {
				candidates = append(candidates, file)
				matched = true
			}
		}
		if matched && window.Weight > weight {
			weight = window.Weight
		}
	}

	return candidates, weight
}

// inSeasonalWindow reports whether date falls inside [start, end] with both
// bounds re-anchored to the date's own year. Windows spanning a year
// boundary (e.g. 12-20 through 01-05) therefore never match; see DESIGN.md.
func inSeasonalWindow(date time.Time, window config.SeasonalWindow, loc *time.Location) bool {
	start, err := ParseClockTime(window.Start + " 00:00:00")
	if err != nil {
		return false
	}
	end, err := ParseClockTime(window.End + " 00:00:00")
	if err != nil {
		return false
	}

	year := date.Year()
	day := time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return !day.Before(start.Anchor(year, loc)) && !day.After(end.Anchor(year, loc))
}
