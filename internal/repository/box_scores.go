package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
)

// BoxScoreRepository handles per-player game lines
type BoxScoreRepository struct {
	q Querier
}

// Upsert inserts or replaces a player's line for a game
func (r *BoxScoreRepository) Upsert(ctx context.Context, b *models.BoxScore) error {
	query := `
		INSERT INTO box_scores (
			game_pk, player_id, team_type, player_name, position, batting_order,
			at_bats, runs, hits, rbi, walks, strikeouts, doubles, triples, home_runs,
			innings_pitched, earned_runs, pitcher_hits, pitcher_walks, pitcher_strikeouts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (game_pk, player_id, team_type) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			position = EXCLUDED.position,
			batting_order = EXCLUDED.batting_order,
			at_bats = EXCLUDED.at_bats,
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			rbi = EXCLUDED.rbi,
			walks = EXCLUDED.walks,
			strikeouts = EXCLUDED.strikeouts,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			home_runs = EXCLUDED.home_runs,
			innings_pitched = EXCLUDED.innings_pitched,
			earned_runs = EXCLUDED.earned_runs,
			pitcher_hits = EXCLUDED.pitcher_hits,
			pitcher_walks = EXCLUDED.pitcher_walks,
			pitcher_strikeouts = EXCLUDED.pitcher_strikeouts
	`

	start := time.Now()
	_, err := r.q.Exec(ctx, query,
		b.GamePK, b.PlayerID, b.TeamType, b.PlayerName, b.Position, b.BattingOrder,
		b.AtBats, b.Runs, b.Hits, b.RBI, b.Walks, b.Strikeouts, b.Doubles, b.Triples, b.HomeRuns,
		b.InningsPitched, b.EarnedRuns, b.PitcherHits, b.PitcherWalks, b.PitcherStrikeouts,
	)
	observe("upsert", "box_scores", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert box score for player %d: %w", b.PlayerID, err)
	}
	return nil
}

// ListByGame returns all box score lines of a game
func (r *BoxScoreRepository) ListByGame(ctx context.Context, gamePK int64) ([]*models.BoxScore, error) {
	query := `
		SELECT game_pk, player_id, team_type, player_name, position, batting_order,
		       at_bats, runs, hits, rbi, walks, strikeouts, doubles, triples, home_runs,
		       innings_pitched, earned_runs, pitcher_hits, pitcher_walks, pitcher_strikeouts, created_at
		FROM box_scores
		WHERE game_pk = $1
		ORDER BY player_id, team_type
	`

	rows, err := r.q.Query(ctx, query, gamePK)
	if err != nil {
		return nil, fmt.Errorf("failed to query box scores: %w", err)
	}
	defer rows.Close()

	var out []*models.BoxScore
	for rows.Next() {
		b := &models.BoxScore{}
		if err := rows.Scan(
			&b.GamePK, &b.PlayerID, &b.TeamType, &b.PlayerName, &b.Position, &b.BattingOrder,
			&b.AtBats, &b.Runs, &b.Hits, &b.RBI, &b.Walks, &b.Strikeouts, &b.Doubles, &b.Triples, &b.HomeRuns,
			&b.InningsPitched, &b.EarnedRuns, &b.PitcherHits, &b.PitcherWalks, &b.PitcherStrikeouts, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan box score: %w", err)
		}
		out = append(out, b)
	}

	return out, rows.Err()
}
