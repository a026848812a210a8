package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rerun-tv/rerun/internal/broadcast"
	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/db"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

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

	// Grids are re-anchored onto the current year at load; the generated
	// year they were built for does not matter.
	resolver := broadcast.NewResolver(time.Local)
	channelIDs := make([]string, 0, len(cfg.Broadcast.Channels))
	for _, channel := range cfg.Broadcast.Channels {
		channelIDs = append(channelIDs, channel.ID)
	}
	loaded := resolver.LoadDir(cfg.Library.SchedulePath, channelIDs, time.Now().Year())
	logger.Log.Info().
		Int("loaded", loaded).
		Int("configured", len(channelIDs)).
		Msg("Channel schedules loaded")

	srv := server.New(cfg, database, resolver)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Log.Fatal().Err(err).Msg("Server failed")
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
