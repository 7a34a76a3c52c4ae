package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
)

// PitchRepository handles pitch and batted ball rows
type PitchRepository struct {
	q Querier
}

// InsertIfAbsent inserts a pitch unless its id already exists
func (r *PitchRepository) InsertIfAbsent(ctx context.Context, p *models.Pitch) (bool, error) {
	query := `
		INSERT INTO pitches (
			pitch_id, game_pk, ab_number, pitch_number, pitcher_id, batter_id,
			inning, inning_half, balls, strikes, outs,
			pitch_type, pitch_name, release_speed, release_pos_x, release_pos_z, release_extension,
			pfx_x, pfx_z, plate_x, plate_z, release_spin_rate, zone, pitch_result, play_result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (pitch_id) DO NOTHING
	`

	start := time.Now()
	tag, err := r.q.Exec(ctx, query,
		p.PitchID, p.GamePK, p.ABNumber, p.PitchNumber, p.PitcherID, p.BatterID,
		p.Inning, p.InningHalf, p.Balls, p.Strikes, p.Outs,
		p.PitchType, p.PitchName, p.ReleaseSpeed, p.ReleasePosX, p.ReleasePosZ, p.Extension,
		p.PfxX, p.PfxZ, p.PlateX, p.PlateZ, p.SpinRate, p.Zone, p.PitchResult, p.PlayResult,
	)
	observe("insert", "pitches", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to insert pitch %s: %w", p.PitchID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// InsertBattedBallIfAbsent inserts a batted ball unless its play id already exists
func (r *PitchRepository) InsertBattedBallIfAbsent(ctx context.Context, b *models.BattedBall) (bool, error) {
	query := `
		INSERT INTO batted_balls (
			play_id, game_pk, batter_id, pitcher_id, inning, inning_half,
			exit_velocity, launch_angle, hit_distance, hit_coord_x, hit_coord_y, result, bb_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (play_id) DO NOTHING
	`

	start := time.Now()
	tag, err := r.q.Exec(ctx, query,
		b.PlayID, b.GamePK, b.BatterID, b.PitcherID, b.Inning, b.InningHalf,
		b.ExitVelocity, b.LaunchAngle, b.HitDistance, b.HitCoordX, b.HitCoordY, b.Result, b.BBType,
	)
	observe("insert", "batted_balls", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to insert batted ball %s: %w", b.PlayID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// CountByGame returns the number of pitches stored for a game
func (r *PitchRepository) CountByGame(ctx context.Context, gamePK int64) (int, error) {
	start := time.Now()
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM pitches WHERE game_pk = $1`, gamePK).Scan(&n)
	observe("select", "pitches", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count pitches for game %d: %w", gamePK, err)
	}
	return n, nil
}

// ListByGame returns the pitch ids of a game in id order
func (r *PitchRepository) ListByGame(ctx context.Context, gamePK int64) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT pitch_id FROM pitches WHERE game_pk = $1 ORDER BY pitch_id`, gamePK)
	if err != nil {
		return nil, fmt.Errorf("failed to list pitches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pitch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
