// Command runonce performs a single ingestion run and exits.
// RUN_START_DATE and RUN_END_DATE replace the planned window, RUN_FORCE
// reprocesses Final games and DRY_RUN writes to an in-memory store.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/ingest"
	"mlbstats/ingestion/internal/loaders"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"
	"mlbstats/ingestion/internal/store"
	"mlbstats/ingestion/internal/store/memstore"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

// run performs the ingestion and returns the process exit code.
// Deferred cleanup runs before main exits.
func run(ctx context.Context, cfg *config.Config) int {
	var opts ingest.RunOptions
	start, end, ok, err := cfg.RunWindow()
	if err != nil {
		log.Error().Err(err).Msg("Invalid run window")
		return 2
	}
	if ok {
		opts.Window = &models.Window{Start: start, End: end}
	}

	var st store.Store
	if cfg.DryRun {
		log.Warn().Msg("DRY_RUN set, writing to an in-memory store")
		st = memstore.New()
	} else {
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
			MaxConns: cfg.DatabaseMaxConns,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to database")
			return 1
		}
		defer db.Close()

		if err := db.Health(ctx); err != nil {
			log.Error().Err(err).Msg("Database health check failed")
			return 1
		}
		if cfg.EnsureSchema {
			if err := db.EnsureSchema(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to apply database schema")
				return 1
			}
		}
		st = db
	}

	feed := client.NewClient(client.Config{
		BaseURL:     cfg.FeedBaseURL,
		ScheduleURL: cfg.FeedScheduleURL,
		Timeout:     cfg.FeedTimeout,
		MaxRetries:  cfg.FeedMaxRetries,
		Concurrency: cfg.FeedConcurrency,
	})

	discovery := ingest.NewDiscovery(feed, st)
	discovery.Force = cfg.RunForce

	pipeline := ingest.NewPipeline(
		ingest.NewWindowPlanner(st, cfg.FallbackDate(), cfg.IngestMaxWindowDays).WithClock(cfg.Now()),
		discovery,
		ingest.NewScheduler(ingest.NewOrchestrator(feed, st, loaders.New()), st, ingest.SchedulerConfig{
			MaxWorkers:        cfg.IngestMaxWorkers,
			TerminationWindow: cfg.IngestTerminationWindow,
			ProgressEvery:     cfg.IngestProgressEvery,
		}).WithClock(cfg.Now()),
	)

	stats := pipeline.RunOnce(ctx, opts)

	if mem, ok := st.(*memstore.Store); ok {
		log.Info().Int("games", len(mem.Games())).Msg("Dry run finished, nothing was persisted")
	}

	return exitCode(stats)
}

// exitCode is 1 when every processed game failed
func exitCode(stats ingest.RunStats) int {
	if stats.Failed > 0 && stats.Succeeded == 0 {
		return 1
	}
	return 0
}
