package media

import (
	"context"
	"fmt"

	"github.com/rerun-tv/rerun/internal/db"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/models"
)

// Decades returns the distinct decades across the channel lineup, in
// lineup order
func Decades(channels []models.Channel) []string {
	seen := make(map[string]bool, len(channels))
	var decades []string
	for _, channel := range channels {
		if channel.Decade != "" && !seen[channel.Decade] {
			seen[channel.Decade] = true
			decades = append(decades, channel.Decade)
		}
	}
	return decades
}

// LoadCatalogs reads the persisted media catalog back out of the database
// in the shape the grid generator consumes: content keyed by channel id,
// commercials keyed by decade.
func LoadCatalogs(ctx context.Context, repo *db.MediaRepository, channels []models.Channel) (map[string][]*models.MediaFile, map[string][]*models.MediaFile, error) {
	content := make(map[string][]*models.MediaFile, len(channels))
	for _, channel := range channels {
		files, err := repo.ListContent(ctx, channel.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load content catalog: %w", err)
		}
		if len(files) == 0 {
			logger.Log.Warn().
				Str("channel_id", channel.ID).
				Msg("Channel has no content in catalog")
		}
		content[channel.ID] = files
	}

	commercials := make(map[string][]*models.MediaFile)
	for _, decade := range Decades(channels) {
		files, err := repo.ListCommercials(ctx, decade)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load commercial catalog: %w", err)
		}
		if len(files) == 0 {
			logger.Log.Warn().
				Str("decade", decade).
				Msg("Decade has no commercials in catalog")
		}
		commercials[decade] = files
	}

	return content, commercials, nil
}
