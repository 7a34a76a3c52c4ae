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

// StatsRepository handles team and player season stats
type StatsRepository struct {
	q Querier
}

// UpsertTeamSeason inserts or overwrites a team's season record
func (r *StatsRepository) UpsertTeamSeason(ctx context.Context, s *models.TeamSeasonStats) error {
	query := `
		INSERT INTO team_season_stats (
			team_id, season, team_name, team_abbreviation, club_name, location_name,
			league_id, league_name, division_id, division_name,
			wins, losses, ties, games_played, winning_percentage,
			division_rank, games_back_division, is_division_leader,
			league_wins, league_losses, league_pct, last_game_pk
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (team_id, season) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			team_abbreviation = EXCLUDED.team_abbreviation,
			club_name = EXCLUDED.club_name,
			location_name = EXCLUDED.location_name,
			league_id = EXCLUDED.league_id,
			league_name = EXCLUDED.league_name,
			division_id = EXCLUDED.division_id,
			division_name = EXCLUDED.division_name,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			games_played = EXCLUDED.games_played,
			winning_percentage = EXCLUDED.winning_percentage,
			division_rank = EXCLUDED.division_rank,
			games_back_division = EXCLUDED.games_back_division,
			is_division_leader = EXCLUDED.is_division_leader,
			league_wins = EXCLUDED.league_wins,
			league_losses = EXCLUDED.league_losses,
			league_pct = EXCLUDED.league_pct,
			last_game_pk = EXCLUDED.last_game_pk,
			updated_at = NOW()
		RETURNING updated_at
	`

	start := time.Now()
	err := r.q.QueryRow(
		ctx, query,
		s.TeamID, s.Season, s.TeamName, s.Abbreviation, s.ClubName, s.LocationName,
		s.LeagueID, s.LeagueName, s.DivisionID, s.DivisionName,
		s.Wins, s.Losses, s.Ties, s.GamesPlayed, s.WinningPct,
		s.DivisionRank, s.GamesBack, s.IsDivisionLeader,
		s.LeagueWins, s.LeagueLosses, s.LeaguePct, s.LastGamePK,
	).Scan(&s.UpdatedAt)
	observe("upsert", "team_season_stats", start, err)

	if err != nil {
		return fmt.Errorf("failed to upsert team season stats: %w", err)
	}

	log.Debug().
		Int("team_id", s.TeamID).
		Int("season", s.Season).
		Int("wins", s.Wins).
		Int("losses", s.Losses).
		Msg("Team season stats upserted")

	return nil
}

// GetTeamSeason retrieves a team's season record
func (r *StatsRepository) GetTeamSeason(ctx context.Context, teamID, season int) (*models.TeamSeasonStats, error) {
	query := `
		SELECT team_id, season, team_name, team_abbreviation, club_name, location_name,
		       league_id, league_name, division_id, division_name,
		       wins, losses, ties, games_played, winning_percentage,
		       division_rank, games_back_division, is_division_leader,
		       league_wins, league_losses, league_pct, last_game_pk, updated_at
		FROM team_season_stats
		WHERE team_id = $1 AND season = $2
	`

	s := &models.TeamSeasonStats{}
	err := r.q.QueryRow(ctx, query, teamID, season).Scan(
		&s.TeamID, &s.Season, &s.TeamName, &s.Abbreviation, &s.ClubName, &s.LocationName,
		&s.LeagueID, &s.LeagueName, &s.DivisionID, &s.DivisionName,
		&s.Wins, &s.Losses, &s.Ties, &s.GamesPlayed, &s.WinningPct,
		&s.DivisionRank, &s.GamesBack, &s.IsDivisionLeader,
		&s.LeagueWins, &s.LeagueLosses, &s.LeaguePct, &s.LastGamePK, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team %d season %d: %w", teamID, season, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team season stats: %w", err)
	}

	return s, nil
}

// UpsertPlayerSeason inserts or overwrites a player's season line
func (r *StatsRepository) UpsertPlayerSeason(ctx context.Context, s *models.PlayerSeasonStats) error {
	query := `
		INSERT INTO player_season_stats (
			player_id, season, team_id, player_name, primary_position,
			batting_games_played, at_bats, plate_appearances, runs, hits, doubles, triples, home_runs,
			rbi, walks, strikeouts, stolen_bases, batting_avg, on_base_pct, slugging_pct, ops,
			pitching_games_played, games_started, pitching_wins, pitching_losses, saves, innings_pitched,
			hits_allowed, earned_runs, home_runs_allowed, walks_allowed, pitcher_strikeouts, era, whip,
			fielding_games, putouts, assists, errors, fielding_percentage, last_game_pk
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40
		)
		ON CONFLICT (player_id, season) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			player_name = EXCLUDED.player_name,
			primary_position = EXCLUDED.primary_position,
			batting_games_played = EXCLUDED.batting_games_played,
			at_bats = EXCLUDED.at_bats,
			plate_appearances = EXCLUDED.plate_appearances,
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			home_runs = EXCLUDED.home_runs,
			rbi = EXCLUDED.rbi,
			walks = EXCLUDED.walks,
			strikeouts = EXCLUDED.strikeouts,
			stolen_bases = EXCLUDED.stolen_bases,
			batting_avg = EXCLUDED.batting_avg,
			on_base_pct = EXCLUDED.on_base_pct,
			slugging_pct = EXCLUDED.slugging_pct,
			ops = EXCLUDED.ops,
			pitching_games_played = EXCLUDED.pitching_games_played,
			games_started = EXCLUDED.games_started,
			pitching_wins = EXCLUDED.pitching_wins,
			pitching_losses = EXCLUDED.pitching_losses,
			saves = EXCLUDED.saves,
			innings_pitched = EXCLUDED.innings_pitched,
			hits_allowed = EXCLUDED.hits_allowed,
			earned_runs = EXCLUDED.earned_runs,
			home_runs_allowed = EXCLUDED.home_runs_allowed,
			walks_allowed = EXCLUDED.walks_allowed,
			pitcher_strikeouts = EXCLUDED.pitcher_strikeouts,
			era = EXCLUDED.era,
			whip = EXCLUDED.whip,
			fielding_games = EXCLUDED.fielding_games,
			putouts = EXCLUDED.putouts,
			assists = EXCLUDED.assists,
			errors = EXCLUDED.errors,
			fielding_percentage = EXCLUDED.fielding_percentage,
			last_game_pk = EXCLUDED.last_game_pk,
			updated_at = NOW()
	`

	start := time.Now()
	_, err := r.q.Exec(ctx, query,
		s.PlayerID, s.Season, s.TeamID, s.PlayerName, s.PrimaryPosition,
		s.BattingGamesPlayed, s.AtBats, s.PlateAppearances, s.Runs, s.Hits, s.Doubles, s.Triples, s.HomeRuns,
		s.RBI, s.Walks, s.Strikeouts, s.StolenBases, s.BattingAvg, s.OnBasePct, s.SluggingPct, s.OPS,
		s.PitchingGamesPlayed, s.GamesStarted, s.PitchingWins, s.PitchingLosses, s.Saves, s.InningsPitched,
		s.HitsAllowed, s.EarnedRuns, s.HomeRunsAllowed, s.WalksAllowed, s.PitcherStrikeouts, s.ERA, s.WHIP,
		s.FieldingGames, s.Putouts, s.Assists, s.Errors, s.FieldingPct, s.LastGamePK,
	)
	observe("upsert", "player_season_stats", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert player season stats for %d: %w", s.PlayerID, err)
	}
	return nil
}

// GetPlayerSeason retrieves the headline columns of a player's season line
func (r *StatsRepository) GetPlayerSeason(ctx context.Context, playerID int64, season int) (*models.PlayerSeasonStats, error) {
	query := `
		SELECT player_id, season, team_id, player_name, primary_position,
		       at_bats, hits, home_runs, batting_avg, ops,
		       innings_pitched, pitcher_strikeouts, era, whip, last_game_pk, updated_at
		FROM player_season_stats
		WHERE player_id = $1 AND season = $2
	`

	s := &models.PlayerSeasonStats{}
	err := r.q.QueryRow(ctx, query, playerID, season).Scan(
		&s.PlayerID, &s.Season, &s.TeamID, &s.PlayerName, &s.PrimaryPosition,
		&s.AtBats, &s.Hits, &s.HomeRuns, &s.BattingAvg, &s.OPS,
		&s.InningsPitched, &s.PitcherStrikeouts, &s.ERA, &s.WHIP, &s.LastGamePK, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player %d season %d: %w", playerID, season, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player season stats: %w", err)
	}

	return s, nil
}
