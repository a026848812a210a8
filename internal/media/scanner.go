// Package media scans content and commercial libraries on disk, probes
// durations with FFprobe, and persists the resulting catalog. The catalog
// it produces is the scheduling engine's opaque input.
package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rerun-tv/rerun/internal/db"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/models"
)

// Scanner walks media folders and records every playable file in the catalog
type Scanner struct {
	repo      *db.MediaRepository
	tvdb      *TVDBClient // nil when enrichment is disabled
	supported map[string]bool
}

// NewScanner creates a scanner over the given catalog repository.
// formats lists supported file extensions without the leading dot.
func NewScanner(repo *db.MediaRepository, formats []string, tvdb *TVDBClient) *Scanner {
	supported := make(map[string]bool, len(formats))
	for _, format := range formats {
		supported[strings.ToLower(strings.TrimPrefix(format, "."))] = true
	}
	return &Scanner{
		repo:      repo,
		tvdb:      tvdb,
		supported: supported,
	}
}

// ScanLibrary scans every configured channel's media folder for content
// files. A missing folder degrades that channel (logged, skipped); it does
// not abort the scan.
func (s *Scanner) ScanLibrary(ctx context.Context, basePath string, channels []models.Channel) error {
	for _, channel := range channels {
		channelPath := filepath.Join(basePath, channel.MediaFolder)

		logger.Log.Info().
			Str("channel_id", channel.ID).
			Str("path", channelPath).
			Msg("Scanning channel library")

		count, err := s.scanDirectory(ctx, channelPath, func(file *models.MediaFile) {
			file.Kind = models.MediaKindContent
			file.ChannelID = channel.ID
			file.Decade = channel.Decade
			file.Category = channel.Kind
		})
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("channel_id", channel.ID).
				Str("path", channelPath).
				Msg("Channel library scan skipped")
			continue
		}

		logger.Log.Info().
			Str("channel_id", channel.ID).
			Int("files", count).
			Msg("Channel library scanned")
	}
	return nil
}

// ScanCommercials scans <basePath>/<decade>/commercials for each decade
func (s *Scanner) ScanCommercials(ctx context.Context, basePath string, decades []string) error {
	for _, decade := range decades {
		commercialPath := filepath.Join(basePath, decade, "commercials")

		logger.Log.Info().
			Str("decade", decade).
			Str("path", commercialPath).
			Msg("Scanning commercials")

		count, err := s.scanDirectory(ctx, commercialPath, func(file *models.MediaFile) {
			file.Kind = models.MediaKindCommercial
			file.Decade = decade
		})
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("decade", decade).
				Str("path", commercialPath).
				Msg("Commercial scan skipped")
			continue
		}

		logger.Log.Info().
			Str("decade", decade).
			Int("files", count).
			Msg("Commercials scanned")
	}
	return nil
}

// scanDirectory walks one directory tree, probing and cataloging every
// supported file. decorate stamps channel/decade ownership onto each file
// before it is persisted.
func (s *Scanner) scanDirectory(ctx context.Context, dir string, decorate func(*models.MediaFile)) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("directory not readable: %w", err)
	}

	count := 0
	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !s.isSupported(entry.Name()) {
			return nil
		}

		file, err := s.catalogFile(ctx, path)
		if err != nil {
			// One bad file should not sink the whole scan
			logger.Log.Error().
				Err(err).
				Str("path", path).
				Msg("Failed to catalog file")
			return nil
		}

		decorate(file)
		if err := s.repo.Upsert(ctx, file); err != nil {
			return fmt.Errorf("failed to persist %s: %w", path, err)
		}
		count++
		return nil
	})
	if walkErr != nil {
		return count, fmt.Errorf("walk failed: %w", walkErr)
	}
	return count, nil
}

// catalogFile probes one file and builds its catalog entry
func (s *Scanner) catalogFile(ctx context.Context, path string) (*models.MediaFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	probed, err := ProbeFile(ctx, absPath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(absPath)
	parsed := ParseFilename(filename)

	file := models.NewMediaFile(absPath, filename, probed.Duration, models.MediaKindContent)
	file.Series = parsed.Series
	file.Season = parsed.Season
	file.Episode = parsed.Episode
	file.Title = parsed.Title
	file.SeasonalTag = parsed.SeasonalTag

	s.enrich(ctx, file)
	return file, nil
}

// enrich fills in TVDB episode metadata for episodic files when enabled
func (s *Scanner) enrich(ctx context.Context, file *models.MediaFile) {
	if s.tvdb == nil || file.Series == "" || file.Season == nil || file.Episode == nil {
		return
	}

	meta, err := s.tvdb.EpisodeMetadata(ctx, file.Series, *file.Season, *file.Episode)
	if err != nil {
		logger.Log.Debug().
			Err(err).
			Str("series", file.Series).
			Msg("TVDB lookup failed")
		return
	}

	file.SeriesName = meta.SeriesName
	file.EpisodeTitle = meta.EpisodeTitle
	file.Overview = meta.Overview
	file.AirDate = meta.AirDate
	file.TVDBID = &meta.SeriesID
}

// isSupported checks a filename extension against the configured formats
func (s *Scanner) isSupported(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return s.supported[ext]
}
