package ingest

import (
	"context"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher retrieves the full payload of one game
type Fetcher interface {
	FetchEvent(ctx context.Context, date time.Time, gamePK int64) (*models.GamePayload, error)
}

// Loader writes the stages of one game payload into a transaction
type Loader interface {
	LoadMetadata(ctx context.Context, tx store.Tx, p *models.GamePayload) (int64, error)
	LoadParticipants(ctx context.Context, tx store.Tx, p *models.GamePayload) (int, error)
	LoadGranularEvents(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error)
	LoadBoxscore(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error)
	LoadWPA(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error)
	LoadSeasonAggregates(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error)
}

// LoadStats counts what one game rebuild wrote
type LoadStats struct {
	Players     int
	Pitches     int
	BoxScores   int
	WPA         int
	SeasonTeams int
	Warnings    int
}

// Orchestrator rebuilds one game: purge, then every load stage in a single
// transaction, then commit
type Orchestrator struct {
	feed   Fetcher
	store  store.Store
	loader Loader
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(feed Fetcher, st store.Store, loader Loader) *Orchestrator {
	return &Orchestrator{feed: feed, store: st, loader: loader}
}

// Process fetches and rebuilds the game. It returns false when the fetch,
// the metadata stage or the commit fails. Failures of the other stages are
// logged and only roll back that stage.
func (o *Orchestrator) Process(ctx context.Context, ref models.EventRef) bool {
	logger := log.With().
		Int64("game_pk", ref.GamePK).
		Str("date", ref.Date.Format("2006-01-02")).
		Logger()

	payload, err := o.feed.FetchEvent(ctx, ref.Date, ref.GamePK)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch game")
		metrics.RecordError("orchestrator", "fetch")
		return false
	}
	if payload == nil {
		logger.Warn().Msg("No data returned for game")
		return false
	}
	if payload.RequestedDate.IsZero() {
		payload.RequestedDate = ref.Date
	}

	// Purge runs in its own transaction so a failed rebuild never restores stale rows
	if err := o.store.PurgeGame(ctx, ref.GamePK); err != nil {
		logger.Warn().Err(err).Msg("Failed to purge game, rebuilding over existing rows")
		metrics.RecordError("orchestrator", "purge")
	}

	tx, err := o.store.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to begin transaction")
		metrics.RecordError("orchestrator", "begin")
		return false
	}
	// No-op once committed
	defer tx.Rollback(ctx)

	gamePK, err := o.loader.LoadMetadata(ctx, tx, payload)
	if err != nil {
		logger.Error().Err(err).Msg("Metadata stage failed")
		metrics.RecordStageFailure("metadata")
		return false
	}

	var ls LoadStats
	ls.Players = o.stage(ctx, tx, logger, &ls, "participants", func(tx store.Tx) (int, error) {
		return o.loader.LoadParticipants(ctx, tx, payload)
	})
	ls.Pitches = o.stage(ctx, tx, logger, &ls, "granular", func(tx store.Tx) (int, error) {
		return o.loader.LoadGranularEvents(ctx, tx, payload, gamePK)
	})
	ls.BoxScores = o.stage(ctx, tx, logger, &ls, "boxscore", func(tx store.Tx) (int, error) {
		return o.loader.LoadBoxscore(ctx, tx, payload, gamePK)
	})
	ls.WPA = o.stage(ctx, tx, logger, &ls, "wpa", func(tx store.Tx) (int, error) {
		return o.loader.LoadWPA(ctx, tx, payload, gamePK)
	})
	ls.SeasonTeams = o.stage(ctx, tx, logger, &ls, "season", func(tx store.Tx) (int, error) {
		return o.loader.LoadSeasonAggregates(ctx, tx, payload, gamePK)
	})

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to commit game")
		metrics.RecordError("orchestrator", "commit")
		return false
	}

	logger.Debug().
		Int("players_created", ls.Players).
		Int("pitches_created", ls.Pitches).
		Int("box_scores", ls.BoxScores).
		Int("wpa", ls.WPA).
		Int("season_teams", ls.SeasonTeams).
		Int("warnings", ls.Warnings).
		Msg("Game committed")
	return true
}

// stage runs fn inside a savepoint. On failure the savepoint is rolled back,
// a warning is logged and zero is returned.
func (o *Orchestrator) stage(ctx context.Context, tx store.Tx, logger zerolog.Logger, ls *LoadStats, name string, fn func(store.Tx) (int, error)) int {
	sp, err := tx.Begin(ctx)
	if err != nil {
		o.stageFailed(logger, ls, name, err)
		return 0
	}

	n, err := fn(sp)
	if err != nil {
		_ = sp.Rollback(ctx)
		o.stageFailed(logger, ls, name, err)
		return 0
	}

	if err := sp.Commit(ctx); err != nil {
		o.stageFailed(logger, ls, name, err)
		return 0
	}
	return n
}

func (o *Orchestrator) stageFailed(logger zerolog.Logger, ls *LoadStats, name string, err error) {
	ls.Warnings++
	metrics.RecordStageFailure(name)
	logger.Warn().Err(err).Str("stage", name).Msg("Load stage failed, continuing")
}
