// Command scan walks the media library, probes every file with FFprobe and
// writes the resulting catalog into the database.
package main

import (
	"context"

	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/db"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/media"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	if err := media.CheckFFprobeInstalled(); err != nil {
		logger.Log.Fatal().Err(err).Msg("FFprobe is required for scanning")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer database.Close() // nolint:errcheck

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to get database handle")
	}
	if err := db.RunMigrations(sqlDB, cfg.Database.MigrationsPath); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	ctx := context.Background()
	repo := db.NewMediaRepository(database)

	tvdb := media.NewTVDBClient(cfg.Library.TVDBAPIKey)
	if tvdb == nil {
		logger.Log.Info().Msg("TVDB enrichment disabled (no API key)")
	}

	scanner := media.NewScanner(repo, cfg.Library.SupportedFormats, tvdb)

	if err := scanner.ScanLibrary(ctx, cfg.Library.MediaPath, cfg.Broadcast.Channels); err != nil {
		logger.Log.Fatal().Err(err).Msg("Library scan failed")
	}
	if err := scanner.ScanCommercials(ctx, cfg.Library.MediaPath, media.Decades(cfg.Broadcast.Channels)); err != nil {
		logger.Log.Fatal().Err(err).Msg("Commercial scan failed")
	}

	total, err := repo.Count(ctx)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to count catalog")
	}

	logger.Log.Info().Int64("catalog_size", total).Msg("Media scan complete")
}
