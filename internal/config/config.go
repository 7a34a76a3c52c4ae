package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration
type Config struct {
	// Game feed API
	FeedBaseURL     string        `envconfig:"FEED_BASE_URL" default:"https://baseballsavant.mlb.com/gf"`
	FeedScheduleURL string        `envconfig:"FEED_SCHEDULE_URL" default:"https://statsapi.mlb.com/api/v1/schedule"`
	FeedTimeout     time.Duration `envconfig:"FEED_TIMEOUT" default:"30s"`
	FeedMaxRetries  int           `envconfig:"FEED_MAX_RETRIES" default:"0"`
	FeedConcurrency int           `envconfig:"FEED_CONCURRENCY" default:"20"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"mlbstats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mlbstats_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"25"`
	EnsureSchema     bool   `envconfig:"DATABASE_ENSURE_SCHEMA" default:"true"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Ingestion
	IngestMaxWorkers        int    `envconfig:"INGEST_MAX_WORKERS" default:"10"`
	IngestCron              string `envconfig:"INGEST_CRON" default:"*/30 * * * *"`
	IngestRunOnStart        bool   `envconfig:"INGEST_RUN_ON_START" default:"true"`
	IngestFallbackDate      string `envconfig:"INGEST_FALLBACK_DATE" default:"2025-03-27"`
	IngestMaxWindowDays     int    `envconfig:"INGEST_MAX_WINDOW_DAYS" default:"2"`
	IngestTerminationWindow int    `envconfig:"INGEST_TERMINATION_WINDOW" default:"5"`
	IngestProgressEvery     int    `envconfig:"INGEST_PROGRESS_EVERY" default:"10"`
	IngestTimezone          string `envconfig:"INGEST_TIMEZONE" default:"America/New_York"` // decides "today"

	// One-shot runs
	RunStartDate string `envconfig:"RUN_START_DATE" default:""`
	RunEndDate   string `envconfig:"RUN_END_DATE" default:""`
	RunForce     bool   `envconfig:"RUN_FORCE" default:"false"`
	DryRun       bool   `envconfig:"DRY_RUN" default:"false"`

	// Locking and caching
	RunLockTTL      time.Duration `envconfig:"RUN_LOCK_TTL" default:"2h"`
	CacheTTLPayload time.Duration `envconfig:"CACHE_TTL_PAYLOAD" default:"168h"` // 7 days

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" && !c.DryRun {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.IngestMaxWorkers < 1 {
		return fmt.Errorf("INGEST_MAX_WORKERS must be at least 1")
	}

	if c.IngestMaxWindowDays < 1 {
		return fmt.Errorf("INGEST_MAX_WINDOW_DAYS must be at least 1")
	}

	if c.FeedMaxRetries < 0 {
		return fmt.Errorf("FEED_MAX_RETRIES must not be negative")
	}

	if _, err := time.Parse(dateLayout, c.IngestFallbackDate); err != nil {
		return fmt.Errorf("INGEST_FALLBACK_DATE must be YYYY-MM-DD: %w", err)
	}

	if _, err := time.LoadLocation(c.IngestTimezone); err != nil {
		return fmt.Errorf("INGEST_TIMEZONE is not a known time zone: %w", err)
	}

	if _, err := cron.ParseStandard(c.IngestCron); err != nil {
		return fmt.Errorf("INGEST_CRON is not a valid cron expression: %w", err)
	}

	if _, _, _, err := c.RunWindow(); err != nil {
		return err
	}

	return nil
}

// FallbackDate returns the date planning falls back to with no complete history
func (c *Config) FallbackDate() time.Time {
	t, _ := time.Parse(dateLayout, c.IngestFallbackDate)
	return t
}

// Location returns the time zone that decides the current calendar day
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.IngestTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Now returns a clock reading the current time in Location
func (c *Config) Now() func() time.Time {
	loc := c.Location()
	return func() time.Time { return time.Now().In(loc) }
}

// RunWindow returns the explicit window of a one-shot run. ok is false when
// RUN_START_DATE is unset. RUN_END_DATE defaults to the start date.
func (c *Config) RunWindow() (start, end time.Time, ok bool, err error) {
	if c.RunStartDate == "" {
		if c.RunEndDate != "" {
			return time.Time{}, time.Time{}, false, fmt.Errorf("RUN_END_DATE requires RUN_START_DATE")
		}
		return time.Time{}, time.Time{}, false, nil
	}

	start, err = time.Parse(dateLayout, c.RunStartDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("RUN_START_DATE must be YYYY-MM-DD: %w", err)
	}

	end = start
	if c.RunEndDate != "" {
		end, err = time.Parse(dateLayout, c.RunEndDate)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("RUN_END_DATE must be YYYY-MM-DD: %w", err)
		}
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("RUN_END_DATE is before RUN_START_DATE")
	}
	return start, end, true, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
