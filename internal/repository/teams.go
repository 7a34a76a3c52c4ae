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

// TeamRepository handles the team directory
type TeamRepository struct {
	q Querier
}

// Upsert inserts a team or refreshes its descriptor. Fields the feed
// left empty keep their stored value.
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, name, abbreviation, club_name, location_name, league, division
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id) DO UPDATE SET
			name = CASE WHEN EXCLUDED.name = '' THEN teams.name ELSE EXCLUDED.name END,
			abbreviation = COALESCE(EXCLUDED.abbreviation, teams.abbreviation),
			club_name = COALESCE(EXCLUDED.club_name, teams.club_name),
			location_name = COALESCE(EXCLUDED.location_name, teams.location_name),
			league = COALESCE(EXCLUDED.league, teams.league),
			division = COALESCE(EXCLUDED.division, teams.division),
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	start := time.Now()
	err := r.q.QueryRow(
		ctx, query,
		team.TeamID, team.Name, team.Abbreviation, team.ClubName,
		team.LocationName, team.League, team.Division,
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	observe("upsert", "teams", start, err)

	if err != nil {
		return fmt.Errorf("failed to upsert team %d: %w", team.TeamID, err)
	}

	log.Debug().
		Int("team_id", team.TeamID).
		Str("name", team.Name).
		Msg("Team upserted")

	return nil
}

// GetByTeamID retrieves a team by its feed id
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID int) (*models.Team, error) {
	query := `
		SELECT team_id, name, abbreviation, club_name, location_name, league, division,
		       created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`

	start := time.Now()
	team := &models.Team{}
	err := r.q.QueryRow(ctx, query, teamID).Scan(
		&team.TeamID, &team.Name, &team.Abbreviation, &team.ClubName,
		&team.LocationName, &team.League, &team.Division,
		&team.CreatedAt, &team.UpdatedAt,
	)
	observe("select", "teams", start, err)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", teamID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}
