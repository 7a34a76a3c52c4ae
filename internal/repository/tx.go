package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/jackc/pgx/v5"
)

// Tx adapts a pgx transaction to store.Tx. Begin on a Tx creates a
// SAVEPOINT so a failed statement can be undone without aborting the
// outer transaction.
type Tx struct {
	tx pgx.Tx

	Games     *GameRepository
	Players   *PlayerRepository
	Pitches   *PitchRepository
	BoxScores *BoxScoreRepository
	Stats     *StatsRepository
	Teams     *TeamRepository
	WPA       *WPARepository
}

func newTx(tx pgx.Tx) *Tx {
	return &Tx{
		tx:        tx,
		Games:     &GameRepository{q: tx},
		Players:   &PlayerRepository{q: tx},
		Pitches:   &PitchRepository{q: tx},
		BoxScores: &BoxScoreRepository{q: tx},
		Stats:     &StatsRepository{q: tx},
		Teams:     &TeamRepository{q: tx},
		WPA:       &WPARepository{q: tx},
	}
}

// Begin opens a savepoint
func (t *Tx) Begin(ctx context.Context) (store.Tx, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create savepoint: %w", err)
	}
	return newTx(sp), nil
}

// Commit commits the transaction or releases the savepoint
func (t *Tx) Commit(ctx context.Context) error {
	start := time.Now()
	err := t.tx.Commit(ctx)
	observe("commit", "tx", start, err)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction or savepoint. Rolling back a closed
// transaction is not an error.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// InsertGame implements store.Tx
func (t *Tx) InsertGame(ctx context.Context, game *models.Game) error {
	return t.Games.Upsert(ctx, game)
}

// EnsureVenue implements store.Tx
func (t *Tx) EnsureVenue(ctx context.Context, venue *models.Venue) error {
	return t.Games.EnsureVenue(ctx, venue)
}

// UpsertTeam implements store.Tx
func (t *Tx) UpsertTeam(ctx context.Context, team *models.Team) error {
	return t.Teams.Upsert(ctx, team)
}

// InsertLineScores implements store.Tx
func (t *Tx) InsertLineScores(ctx context.Context, lines []*models.LineScore) error {
	return t.Games.InsertLineScores(ctx, lines)
}

// EnsurePlayer implements store.Tx
func (t *Tx) EnsurePlayer(ctx context.Context, player *models.Player) (bool, error) {
	return t.Players.Ensure(ctx, player)
}

// InsertPitch implements store.Tx
func (t *Tx) InsertPitch(ctx context.Context, pitch *models.Pitch) (bool, error) {
	return t.Pitches.InsertIfAbsent(ctx, pitch)
}

// InsertBattedBall implements store.Tx
func (t *Tx) InsertBattedBall(ctx context.Context, ball *models.BattedBall) (bool, error) {
	return t.Pitches.InsertBattedBallIfAbsent(ctx, ball)
}

// UpsertBoxScore implements store.Tx
func (t *Tx) UpsertBoxScore(ctx context.Context, box *models.BoxScore) error {
	return t.BoxScores.Upsert(ctx, box)
}

// LockTeam takes a transaction-scoped advisory lock keyed by team id
func (t *Tx) LockTeam(ctx context.Context, teamID int) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, teamLockNamespace, teamID); err != nil {
		return fmt.Errorf("failed to lock team %d: %w", teamID, err)
	}
	return nil
}

// Namespace for the two-key advisory lock form so team ids do not collide
// with other advisory lock users of the same database.
const teamLockNamespace int32 = 7301

// IsMostRecentFinal implements store.Tx
func (t *Tx) IsMostRecentFinal(ctx context.Context, teamID int, gamePK int64) (bool, error) {
	return t.Games.IsMostRecentFinal(ctx, teamID, gamePK)
}

// UpsertTeamSeasonStats implements store.Tx
func (t *Tx) UpsertTeamSeasonStats(ctx context.Context, stats *models.TeamSeasonStats) error {
	return t.Stats.UpsertTeamSeason(ctx, stats)
}

// UpsertPlayerSeasonStats implements store.Tx
func (t *Tx) UpsertPlayerSeasonStats(ctx context.Context, stats *models.PlayerSeasonStats) error {
	return t.Stats.UpsertPlayerSeason(ctx, stats)
}

var _ store.Tx = (*Tx)(nil)

// InsertWPA implements store.Tx
func (t *Tx) InsertWPA(ctx context.Context, wpa *models.GameWPA) (bool, error) {
	return t.WPA.InsertIfAbsent(ctx, wpa)
}
