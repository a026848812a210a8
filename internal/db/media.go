package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/rerun-tv/rerun/internal/models"
)

// MediaRepository handles database operations for the media catalog
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Upsert inserts a media file, replacing any existing row with the same
// path-derived ID. Rescanning a library refreshes metadata in place.
func (r *MediaRepository) Upsert(ctx context.Context, media *models.MediaFile) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(media)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert media: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a media file by its UUID
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var media models.MediaFile
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&media)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &media, nil
}

// GetByPath retrieves a media file by its absolute file path
func (r *MediaRepository) GetByPath(ctx context.Context, path string) (*models.MediaFile, error) {
	var media models.MediaFile
	result := r.db.WithContext(ctx).Where("path = ?", path).First(&media)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &media, nil
}

// ListContent retrieves all content files for a channel, ordered by series,
// season and episode so the round-robin rotation walks shows in order
func (r *MediaRepository) ListContent(ctx context.Context, channelID string) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	result := r.db.WithContext(ctx).
		Where("kind = ? AND channel_id = ?", models.MediaKindContent, channelID).
		Order("series ASC, COALESCE(season, 9999999) ASC, COALESCE(episode, 9999999) ASC, filename ASC").
		Find(&files)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list content for channel %s: %w", channelID, MapGormError(result.Error))
	}
	return files, nil
}

// ListCommercials retrieves all commercial spots for a decade
func (r *MediaRepository) ListCommercials(ctx context.Context, decade string) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	result := r.db.WithContext(ctx).
		Where("kind = ? AND decade = ?", models.MediaKindCommercial, decade).
		Order("filename ASC").
		Find(&files)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list commercials for decade %s: %w", decade, MapGormError(result.Error))
	}
	return files, nil
}

// Count returns the total number of catalog entries
func (r *MediaRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.MediaFile{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count media: %w", MapGormError(result.Error))
	}
	return count, nil
}

// Delete removes a media file by its UUID
func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.MediaFile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete media: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
