package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaKind distinguishes long-form content from commercial spots
type MediaKind string

const (
	MediaKindContent    MediaKind = "content"
	MediaKindCommercial MediaKind = "commercial"
)

// MediaFile represents one scanned media asset. It is immutable once scanned:
// the scheduler and resolver treat Duration and Path as authoritative and
// never re-derive them.
type MediaFile struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Path      string    `json:"path" gorm:"type:text;not null;uniqueIndex;column:path"`
	Filename  string    `json:"filename" gorm:"type:text;not null;column:filename"`
	Duration  int64     `json:"duration" gorm:"type:integer;not null;column:duration"` // seconds
	Kind      MediaKind `json:"type" gorm:"type:text;not null;column:kind"`
	ChannelID string    `json:"channelId,omitempty" gorm:"type:text;index;column:channel_id"`
	Decade    string    `json:"decade,omitempty" gorm:"type:text;index;column:decade"`
	Category  string    `json:"category,omitempty" gorm:"type:text;column:category"`

	// SeasonalTag marks holiday-themed content (halloween, christmas, ...).
	// Empty for everything else.
	SeasonalTag string `json:"seasonalTag,omitempty" gorm:"type:text;column:seasonal_tag"`

	Series  string `json:"series,omitempty" gorm:"type:text;column:series"`
	Season  *int   `json:"season,omitempty" gorm:"type:integer;column:season"`
	Episode *int   `json:"episode,omitempty" gorm:"type:integer;column:episode"`
	Title   string `json:"title,omitempty" gorm:"type:text;column:title"`

	// Externally sourced episode metadata (TVDB). Optional.
	SeriesName   string `json:"seriesName,omitempty" gorm:"type:text;column:series_name"`
	EpisodeTitle string `json:"episodeTitle,omitempty" gorm:"type:text;column:episode_title"`
	Overview     string `json:"overview,omitempty" gorm:"type:text;column:overview"`
	AirDate      string `json:"airDate,omitempty" gorm:"type:text;column:air_date"`
	TVDBID       *int   `json:"tvdbId,omitempty" gorm:"type:integer;column:tvdb_id"`

	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName overrides the GORM table name
func (MediaFile) TableName() string {
	return "media_files"
}

// MediaID derives a stable identity from the file path, so rescans and
// schedule regenerations against the same library produce the same IDs.
func MediaID(path string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path))
}

// NewMediaFile creates a MediaFile with a path-derived ID and timestamp
func NewMediaFile(path, filename string, duration int64, kind MediaKind) *MediaFile {
	return &MediaFile{
		ID:        MediaID(path),
		Path:      path,
		Filename:  filename,
		Duration:  duration,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// IsCommercial reports whether this asset is a commercial spot
func (m *MediaFile) IsCommercial() bool {
	return m.Kind == MediaKindCommercial
}

// DisplayTitle returns the best human-readable name for this asset
func (m *MediaFile) DisplayTitle() string {
	if m.EpisodeTitle != "" && m.SeriesName != "" {
		return fmt.Sprintf("%s - %s", m.SeriesName, m.EpisodeTitle)
	}
	if m.Title != "" {
		return m.Title
	}
	return m.Filename
}

// DurationString returns duration in HH:MM:SS format
func (m *MediaFile) DurationString() string {
	hours := m.Duration / 3600
	minutes := (m.Duration % 3600) / 60
	seconds := m.Duration % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
