package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles the player dimension
type PlayerRepository struct {
	q Querier
}

// Ensure inserts the player if absent. Existing rows are never modified.
func (r *PlayerRepository) Ensure(ctx context.Context, player *models.Player) (bool, error) {
	query := `
		INSERT INTO players (player_id, full_name, bat_side, pitch_hand, primary_position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO NOTHING
	`

	start := time.Now()
	tag, err := r.q.Exec(ctx, query,
		player.PlayerID, player.FullName, player.BatSide, player.PitchHand, player.PrimaryPosition,
	)
	observe("insert", "players", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to ensure player %d: %w", player.PlayerID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a player by MLB person id
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `
		SELECT player_id, full_name, bat_side, pitch_hand, primary_position, created_at
		FROM players
		WHERE player_id = $1
	`

	p := &models.Player{}
	err := r.q.QueryRow(ctx, query, playerID).Scan(
		&p.PlayerID, &p.FullName, &p.BatSide, &p.PitchHand, &p.PrimaryPosition, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player %d: %w", playerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}
