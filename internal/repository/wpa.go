package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
)

// WPARepository handles per-play win expectancy rows
type WPARepository struct {
	q Querier
}

// InsertIfAbsent inserts a WPA row unless its play id already exists
func (r *WPARepository) InsertIfAbsent(ctx context.Context, w *models.GameWPA) (bool, error) {
	query := `
		INSERT INTO game_wpa (
			play_id, game_pk, inning, inning_half,
			home_win_exp, away_win_exp, win_exp_added, batter_id, pitcher_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (play_id) DO NOTHING
	`

	start := time.Now()
	tag, err := r.q.Exec(ctx, query,
		w.PlayID, w.GamePK, w.Inning, w.InningHalf,
		w.HomeWinExp, w.AwayWinExp, w.WinExpAdded, w.BatterID, w.PitcherID,
	)
	observe("insert", "game_wpa", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to insert wpa %s: %w", w.PlayID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListByGame returns the WPA rows of a game ordered by play id
func (r *WPARepository) ListByGame(ctx context.Context, gamePK int64) ([]*models.GameWPA, error) {
	query := `
		SELECT play_id, game_pk, inning, inning_half,
		       home_win_exp, away_win_exp, win_exp_added, batter_id, pitcher_id, created_at
		FROM game_wpa
		WHERE game_pk = $1
		ORDER BY play_id
	`

	start := time.Now()
	rows, err := r.q.Query(ctx, query, gamePK)
	observe("select", "game_wpa", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query wpa: %w", err)
	}
	defer rows.Close()

	var out []*models.GameWPA
	for rows.Next() {
		w := &models.GameWPA{}
		if err := rows.Scan(
			&w.PlayID, &w.GamePK, &w.Inning, &w.InningHalf,
			&w.HomeWinExp, &w.AwayWinExp, &w.WinExpAdded, &w.BatterID, &w.PitcherID, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wpa: %w", err)
		}
		out = append(out, w)
	}

	return out, rows.Err()
}
