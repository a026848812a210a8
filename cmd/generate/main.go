// Command generate produces year-long program grids for configured channels
// and persists them in the year-agnostic encoding the server loads.
package main

import (
	"context"
	"flag"
	"math/rand"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rerun-tv/rerun/internal/config"
	"github.com/rerun-tv/rerun/internal/db"
	"github.com/rerun-tv/rerun/internal/logger"
	"github.com/rerun-tv/rerun/internal/media"
	"github.com/rerun-tv/rerun/internal/models"
	"github.com/rerun-tv/rerun/internal/schedule"
)

func main() {
	year := flag.Int("year", time.Now().Year(), "calendar year to generate")
	channelID := flag.String("channel", "", "generate a single channel (default: all configured)")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

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

	ctx := context.Background()
	repo := db.NewMediaRepository(database)

	content, commercials, err := media.LoadCatalogs(ctx, repo, cfg.Broadcast.Channels)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load media catalogs")
	}

	channels := cfg.Broadcast.Channels
	if *channelID != "" {
		channel, ok := cfg.Channel(*channelID)
		if !ok {
			logger.Log.Fatal().Str("channel_id", *channelID).Msg("Channel not found in configuration")
		}
		channels = []models.Channel{*channel}
	}

	// Generation is CPU-bound and channels share no mutable state, so each
	// channel gets its own goroutine and its own random source.
	g, _ := errgroup.WithContext(ctx)
	for i, channel := range channels {
		g.Go(func() error {
			channelSeed := *seed
			if channelSeed == 0 {
				channelSeed = time.Now().UnixNano() + int64(i)
			} else {
				channelSeed += int64(i)
			}
			rng := rand.New(rand.NewSource(channelSeed)) // #nosec G404 -- scheduling variety, not crypto

			gen := schedule.NewGenerator(cfg, content, commercials, rng, time.Local)
			days, err := gen.GenerateYear(*year, channel.ID)
			if err != nil {
				return err
			}

			path := filepath.Join(cfg.Library.SchedulePath, channel.ID+".json")
			return schedule.SaveFile(path, days)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Schedule generation failed")
	}

	logger.Log.Info().
		Int("channels", len(channels)).
		Int("year", *year).
		Msg("Schedule generation complete")
}
