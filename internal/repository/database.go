package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories bound to the pool
	Games     *GameRepository
	Players   *PlayerRepository
	Pitches   *PitchRepository
	BoxScores *BoxScoreRepository
	Stats     *StatsRepository
	Teams     *TeamRepository
	WPA       *WPARepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Each ingestion worker holds a connection for its build transaction
	// and briefly a second one for purge and state queries.
	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 5
	if poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = poolConfig.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Successfully connected to database")

	return &Database{
		Pool:      pool,
		Games:     &GameRepository{q: pool},
		Players:   &PlayerRepository{q: pool},
		Pitches:   &PitchRepository{q: pool},
		BoxScores: &BoxScoreRepository{q: pool},
		Stats:     &StatsRepository{q: pool},
		Teams:     &TeamRepository{q: pool},
		WPA:       &WPARepository{q: pool},
	}, nil
}

// EnsureSchema creates missing tables and indexes
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("Database schema ensured")
	return nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// GameDateCounts implements store.Reader
func (db *Database) GameDateCounts(ctx context.Context) ([]store.DateCount, error) {
	return db.Games.DateCounts(ctx)
}

// GetGame implements store.Reader
func (db *Database) GetGame(ctx context.Context, gamePK int64) (*models.Game, error) {
	return db.Games.GetByGamePK(ctx, gamePK)
}

// CountPitches implements store.Reader
func (db *Database) CountPitches(ctx context.Context, gamePK int64) (int, error) {
	return db.Pitches.CountByGame(ctx, gamePK)
}

// PurgeGame deletes a game and its child rows in one short transaction
func (db *Database) PurgeGame(ctx context.Context, gamePK int64) error {
	start := time.Now()
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, table := range purgeTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE game_pk = $1", table), gamePK); err != nil {
				return fmt.Errorf("failed to purge %s: %w", table, err)
			}
		}
		return nil
	})
	observe("delete", "games", start, err)
	if err != nil {
		return fmt.Errorf("failed to purge game %d: %w", gamePK, err)
	}
	return nil
}

// Child tables first so the games row goes last.
var purgeTables = []string{"game_wpa", "batted_balls", "pitches", "box_scores", "line_scores", "games"}

// BeginTx implements store.Store
func (db *Database) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return newTx(tx), nil
}

// observe records query metrics the same way for every repository
func observe(operation, table string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	metrics.RecordDBQuery(operation, table, status, time.Since(start).Seconds())
}

var _ store.Store = (*Database)(nil)
