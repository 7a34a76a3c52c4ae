package repository

import (
	"context"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game, venue and line score operations
type GameRepository struct {
	q Querier
}

const gameColumns = `
	game_pk, game_guid, game_type, official_date, season,
	home_team_id, home_team_name, home_team_abbreviation,
	away_team_id, away_team_name, away_team_abbreviation,
	venue_id, status_abstract, status_coded, status_detailed,
	current_inning, inning_state, scheduled_innings,
	home_score, away_score, home_hits, away_hits, home_errors, away_errors`

// Upsert inserts a game or overwrites it wholesale
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (` + gameColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (game_pk) DO UPDATE SET
			game_guid = EXCLUDED.game_guid,
			game_type = EXCLUDED.game_type,
			official_date = EXCLUDED.official_date,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			home_team_name = EXCLUDED.home_team_name,
			home_team_abbreviation = EXCLUDED.home_team_abbreviation,
			away_team_id = EXCLUDED.away_team_id,
			away_team_name = EXCLUDED.away_team_name,
			away_team_abbreviation = EXCLUDED.away_team_abbreviation,
			venue_id = EXCLUDED.venue_id,
			status_abstract = EXCLUDED.status_abstract,
			status_coded = EXCLUDED.status_coded,
			status_detailed = EXCLUDED.status_detailed,
			current_inning = EXCLUDED.current_inning,
			inning_state = EXCLUDED.inning_state,
			scheduled_innings = EXCLUDED.scheduled_innings,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			home_hits = EXCLUDED.home_hits,
			away_hits = EXCLUDED.away_hits,
			home_errors = EXCLUDED.home_errors,
			away_errors = EXCLUDED.away_errors,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	start := time.Now()
	err := r.q.QueryRow(
		ctx, query,
		game.GamePK, game.GameGUID, game.GameType, game.OfficialDate, game.Season,
		game.HomeTeamID, game.HomeTeamName, game.HomeTeamAbbreviation,
		game.AwayTeamID, game.AwayTeamName, game.AwayTeamAbbreviation,
		game.VenueID, game.StatusAbstract, game.StatusCoded, game.Status,
		game.CurrentInning, game.InningState, game.ScheduledInnings,
		game.HomeScore, game.AwayScore, game.HomeHits, game.AwayHits, game.HomeErrors, game.AwayErrors,
	).Scan(&game.CreatedAt, &game.UpdatedAt)
	observe("upsert", "games", start, err)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	log.Debug().
		Int64("game_pk", game.GamePK).
		Str("status", game.Status).
		Time("official_date", game.OfficialDate).
		Msg("Game upserted")

	return nil
}

// GetByGamePK retrieves a game by its MLB game id
func (r *GameRepository) GetByGamePK(ctx context.Context, gamePK int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + `, created_at, updated_at FROM games WHERE game_pk = $1`

	start := time.Now()
	game := &models.Game{}
	err := r.q.QueryRow(ctx, query, gamePK).Scan(
		&game.GamePK, &game.GameGUID, &game.GameType, &game.OfficialDate, &game.Season,
		&game.HomeTeamID, &game.HomeTeamName, &game.HomeTeamAbbreviation,
		&game.AwayTeamID, &game.AwayTeamName, &game.AwayTeamAbbreviation,
		&game.VenueID, &game.StatusAbstract, &game.StatusCoded, &game.Status,
		&game.CurrentInning, &game.InningState, &game.ScheduledInnings,
		&game.HomeScore, &game.AwayScore, &game.HomeHits, &game.AwayHits, &game.HomeErrors, &game.AwayErrors,
		&game.CreatedAt, &game.UpdatedAt,
	)
	observe("select", "games", start, err)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game %d: %w", gamePK, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// DateCounts returns total and Final game counts per date, most recent first
func (r *GameRepository) DateCounts(ctx context.Context) ([]store.DateCount, error) {
	query := `
		SELECT official_date,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status_detailed IN ('Final', 'F')) AS final
		FROM games
		GROUP BY official_date
		ORDER BY official_date DESC
	`

	start := time.Now()
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		observe("select", "games", start, err)
		return nil, fmt.Errorf("failed to query game date counts: %w", err)
	}
	defer rows.Close()

	var counts []store.DateCount
	for rows.Next() {
		var dc store.DateCount
		if err := rows.Scan(&dc.Date, &dc.Total, &dc.Final); err != nil {
			return nil, fmt.Errorf("failed to scan game date count: %w", err)
		}
		counts = append(counts, dc)
	}
	err = rows.Err()
	observe("select", "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating game date counts: %w", err)
	}

	return counts, nil
}

// IsMostRecentFinal reports whether gamePK is the latest Final game for the
// team by official date, with the game id breaking ties
func (r *GameRepository) IsMostRecentFinal(ctx context.Context, teamID int, gamePK int64) (bool, error) {
	query := `
		SELECT game_pk
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND status_detailed IN ('Final', 'F')
		ORDER BY official_date DESC, game_pk DESC
		LIMIT 1
	`

	start := time.Now()
	var latest int64
	err := r.q.QueryRow(ctx, query, teamID).Scan(&latest)
	observe("select", "games", start, err)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find most recent final game for team %d: %w", teamID, err)
	}

	return latest == gamePK, nil
}

// EnsureVenue inserts the venue if it is not already known
func (r *GameRepository) EnsureVenue(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO venues (venue_id, name)
		VALUES ($1, $2)
		ON CONFLICT (venue_id) DO NOTHING
	`

	start := time.Now()
	_, err := r.q.Exec(ctx, query, venue.VenueID, venue.Name)
	observe("insert", "venues", start, err)
	if err != nil {
		return fmt.Errorf("failed to ensure venue %d: %w", venue.VenueID, err)
	}
	return nil
}

// InsertLineScores writes per-inning line scores in one batch
func (r *GameRepository) InsertLineScores(ctx context.Context, lines []*models.LineScore) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO line_scores (game_pk, inning, team_type, runs, hits, errors, left_on_base)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_pk, inning, team_type) DO UPDATE SET
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			errors = EXCLUDED.errors,
			left_on_base = EXCLUDED.left_on_base
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.GamePK, l.Inning, l.TeamType, l.Runs, l.Hits, l.Errors, l.LeftOnBase)
	}

	start := time.Now()
	err := r.q.SendBatch(ctx, batch).Close()
	observe("insert", "line_scores", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert line scores: %w", err)
	}
	return nil
}

// LineScores returns the line scores of a game ordered by inning
func (r *GameRepository) LineScores(ctx context.Context, gamePK int64) ([]*models.LineScore, error) {
	query := `
		SELECT game_pk, inning, team_type, runs, hits, errors, left_on_base
		FROM line_scores
		WHERE game_pk = $1
		ORDER BY inning, team_type
	`

	rows, err := r.q.Query(ctx, query, gamePK)
	if err != nil {
		return nil, fmt.Errorf("failed to query line scores: %w", err)
	}
	defer rows.Close()

	var lines []*models.LineScore
	for rows.Next() {
		l := &models.LineScore{}
		if err := rows.Scan(&l.GamePK, &l.Inning, &l.TeamType, &l.Runs, &l.Hits, &l.Errors, &l.LeftOnBase); err != nil {
			return nil, fmt.Errorf("failed to scan line score: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}
