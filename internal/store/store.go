// Package store defines the persistence boundary used by the ingestion core.
// repository provides the Postgres implementation and memstore an in-memory one.
package store

import (
	"context"
	"errors"
	"time"

	"mlbstats/ingestion/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// DateCount is the number of games on a date and how many of them are Final
type DateCount struct {
	Date  time.Time
	Total int
	Final int
}

// Complete reports whether every game on the date is Final
func (d DateCount) Complete() bool {
	return d.Total > 0 && d.Final == d.Total
}

// Reader is the read side used by planning, discovery and termination checks
type Reader interface {
	// GameDateCounts returns per-date totals, most recent date first
	GameDateCounts(ctx context.Context) ([]DateCount, error)
	GetGame(ctx context.Context, gamePK int64) (*models.Game, error)
	CountPitches(ctx context.Context, gamePK int64) (int, error)
}

// Store is the session factory for one ingestion worker
type Store interface {
	Reader

	// PurgeGame deletes a game and all of its child rows in its own
	// short transaction. Deleting a game that does not exist is not an error.
	PurgeGame(ctx context.Context, gamePK int64) error

	// BeginTx opens the unit of work a game is rebuilt in
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a unit of work. Begin opens a nested scope (savepoint) whose
// rollback discards only the writes made inside it.
type Tx interface {
	Begin(ctx context.Context) (Tx, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	InsertGame(ctx context.Context, game *models.Game) error
	EnsureVenue(ctx context.Context, venue *models.Venue) error
	// UpsertTeam refreshes the team directory entry
	UpsertTeam(ctx context.Context, team *models.Team) error
	InsertLineScores(ctx context.Context, lines []*models.LineScore) error

	// EnsurePlayer inserts the player if absent and reports whether it was created
	EnsurePlayer(ctx context.Context, player *models.Player) (bool, error)
	// InsertPitch inserts the pitch if its id is unseen and reports whether it was created
	InsertPitch(ctx context.Context, pitch *models.Pitch) (bool, error)
	InsertBattedBall(ctx context.Context, ball *models.BattedBall) (bool, error)
	UpsertBoxScore(ctx context.Context, box *models.BoxScore) error
	// InsertWPA inserts the win expectancy row if its play id is unseen
	InsertWPA(ctx context.Context, wpa *models.GameWPA) (bool, error)

	// LockTeam serializes season writers for a team until the transaction ends
	LockTeam(ctx context.Context, teamID int) error
	// IsMostRecentFinal reports whether gamePK is the latest Final game on
	// record for teamID, ordered by official date then game id
	IsMostRecentFinal(ctx context.Context, teamID int, gamePK int64) (bool, error)
	UpsertTeamSeasonStats(ctx context.Context, stats *models.TeamSeasonStats) error
	UpsertPlayerSeasonStats(ctx context.Context, stats *models.PlayerSeasonStats) error
}
