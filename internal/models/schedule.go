package models

import (
	"fmt"
	"time"
)

// ScheduleEntry is one scheduled airing of a single media asset on a channel.
// End is always derived from Start plus the media duration; a persisted end
// timestamp is never trusted.
type ScheduleEntry struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channelId"`
	Start     time.Time  `json:"startTime"`
	End       time.Time  `json:"endTime"`
	Media     *MediaFile `json:"mediaFile"`

	IsCommercial bool `json:"isCommercial"`

	// Year-agnostic projection. This, not the absolute date, is the durable
	// identity that lets one generated grid repeat across calendar years.
	DayOfYear int    `json:"dayOfYear"` // 1-365
	MonthDay  string `json:"monthDay"`  // MM-DD
	TimeOfDay string `json:"timeOfDay"` // HH:MM:SS
}

// EntryID derives a stable entry identity from channel, start instant and
// media ID. Regenerating with the same inputs yields the same IDs.
func EntryID(channelID string, start time.Time, mediaID string) string {
	return fmt.Sprintf("%s-%d-%s", channelID, start.Unix(), mediaID)
}

// NewScheduleEntry builds an entry airing media at start. The end instant and
// the year-agnostic projection are computed here and nowhere else.
func NewScheduleEntry(channelID string, start time.Time, media *MediaFile, isCommercial bool) *ScheduleEntry {
	return &ScheduleEntry{
		ID:           EntryID(channelID, start, media.ID.String()),
		ChannelID:    channelID,
		Start:        start,
		End:          start.Add(time.Duration(media.Duration) * time.Second),
		Media:        media,
		IsCommercial: isCommercial,
		DayOfYear:    start.YearDay(),
		MonthDay:     start.Format("01-02"),
		TimeOfDay:    start.Format("15:04:05"),
	}
}

// Contains reports whether t falls within the entry's half-open [Start, End)
// airing window.
func (e *ScheduleEntry) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// DaySchedule is the full, gap-covering sequence of entries for one channel
// on one calendar day, sorted by start instant.
type DaySchedule struct {
	ChannelID string           `json:"channelId"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Entries   []*ScheduleEntry `json:"entries"`
}

// DateKey formats a time as the YYYY-MM-DD key used to index day schedules
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
