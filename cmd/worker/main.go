package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/ingest"
	"mlbstats/ingestion/internal/loaders"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/repository"
	"mlbstats/ingestion/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting MLB Game Ingestion Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("max_workers", cfg.IngestMaxWorkers).
		Str("timezone", cfg.Location().String()).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
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
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.EnsureSchema {
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
	}

	// Initialize feed client
	feed := client.NewClient(client.Config{
		BaseURL:     cfg.FeedBaseURL,
		ScheduleURL: cfg.FeedScheduleURL,
		Timeout:     cfg.FeedTimeout,
		MaxRetries:  cfg.FeedMaxRetries,
		Concurrency: cfg.FeedConcurrency,
	})
	log.Info().Str("base_url", cfg.FeedBaseURL).Msg("Feed client initialized")

	// Initialize Redis client. The worker runs without cache and run lock
	// when Redis is disabled or unreachable.
	var locker scheduler.Locker
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.CacheTTLPayload)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			feed.WithCache(redisCache)
			locker = redisCache
			log.Info().Msg("Redis cache connected")
		}
	}

	// Build the ingestion pipeline
	orchestrator := ingest.NewOrchestrator(feed, db, loaders.New())
	pipeline := ingest.NewPipeline(
		ingest.NewWindowPlanner(db, cfg.FallbackDate(), cfg.IngestMaxWindowDays).WithClock(cfg.Now()),
		ingest.NewDiscovery(feed, db),
		ingest.NewScheduler(orchestrator, db, ingest.SchedulerConfig{
			MaxWorkers:        cfg.IngestMaxWorkers,
			TerminationWindow: cfg.IngestTerminationWindow,
			ProgressEvery:     cfg.IngestProgressEvery,
		}).WithClock(cfg.Now()),
	)

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				db.PoolStats()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(scheduler.Config{
		Cron:       cfg.IngestCron,
		RunOnStart: cfg.IngestRunOnStart,
		LockTTL:    cfg.RunLockTTL,
	}, pipeline, locker)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *repository.Database) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := map[string]interface{}{"status": "healthy"}
		if err := db.Health(r.Context()); err != nil {
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			status["database"] = db.PoolStats()
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
