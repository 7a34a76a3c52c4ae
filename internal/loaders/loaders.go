// Package loaders writes one decoded game payload into a store transaction.
// Each stage is independent; the caller decides which failures are fatal.
package loaders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/rs/zerolog/log"
)

// ErrNoGameID is returned by LoadMetadata when the payload carries no game id
var ErrNoGameID = errors.New("payload has no game id")

// Loaders implements the per-game load stages
type Loaders struct{}

// New creates the stage loaders
func New() *Loaders {
	return &Loaders{}
}

// LoadMetadata writes the venue, the games row and the inning line scores.
// It returns the game id the remaining stages are keyed on.
func (l *Loaders) LoadMetadata(ctx context.Context, tx store.Tx, p *models.GamePayload) (int64, error) {
	if p == nil || p.GamePK() == 0 {
		return 0, ErrNoGameID
	}

	game, err := p.ToGame()
	if err != nil {
		return 0, fmt.Errorf("failed to convert game: %w", err)
	}

	// games.venue_id references venues
	if venue := p.ToVenue(); venue != nil {
		if err := tx.EnsureVenue(ctx, venue); err != nil {
			return 0, fmt.Errorf("failed to ensure venue %d: %w", venue.VenueID, err)
		}
	}

	for _, team := range p.ToTeams() {
		if err := tx.UpsertTeam(ctx, team); err != nil {
			return 0, fmt.Errorf("failed to upsert team %d: %w", team.TeamID, err)
		}
	}

	if err := tx.InsertGame(ctx, game); err != nil {
		return 0, fmt.Errorf("failed to insert game %d: %w", game.GamePK, err)
	}

	if lines := p.ToLineScores(); len(lines) > 0 {
		if err := tx.InsertLineScores(ctx, lines); err != nil {
			return 0, fmt.Errorf("failed to insert line scores for game %d: %w", game.GamePK, err)
		}
	}

	log.Debug().
		Int64("game_pk", game.GamePK).
		Str("status", game.Status).
		Str("date", game.OfficialDate.Format("2006-01-02")).
		Msg("Loaded game metadata")

	return game.GamePK, nil
}

// LoadParticipants inserts any player from either boxscore that is not yet
// known. Entries with implausible names are skipped. Returns the number of
// players created.
func (l *Loaders) LoadParticipants(ctx context.Context, tx store.Tx, p *models.GamePayload) (int, error) {
	created := 0
	skipped := 0

	for _, teamType := range []string{models.TeamTypeAway, models.TeamTypeHome} {
		side := p.Boxscore.Side(teamType)
		for _, key := range sortedKeys(side.Players) {
			entry := side.Players[key]
			playerID, err := models.PlayerID(key)
			if err != nil {
				skipped++
				continue
			}

			player := entry.ToPlayer(playerID)
			if err := ValidatePlayerName(playerID, player.FullName); err != nil {
				log.Debug().
					Int64("player_id", playerID).
					Str("name", player.FullName).
					Err(err).
					Msg("Skipping player")
				skipped++
				continue
			}

			ok, err := tx.EnsurePlayer(ctx, player)
			if err != nil {
				return created, fmt.Errorf("failed to ensure player %d: %w", playerID, err)
			}
			if ok {
				created++
			}
		}
	}

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("Skipped boxscore players")
	}
	return created, nil
}

// LoadGranularEvents inserts the game's pitches and batted balls. A pitch
// whose id is already stored is left untouched. Returns the number of
// pitches created.
func (l *Loaders) LoadGranularEvents(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error) {
	awayAbbrev := p.AwayTeamData.Abbreviation
	created := 0

	for _, pitches := range [][]models.PitchInput{p.AwayPitches, p.HomePitches} {
		for i := range pitches {
			pi := &pitches[i]

			ok, err := tx.InsertPitch(ctx, pi.ToPitch(gamePK, awayAbbrev))
			if err != nil {
				return created, fmt.Errorf("failed to insert pitch %s: %w", pi.PitchID(gamePK), err)
			}
			if ok {
				created++
			}

			if pi.IsBattedBall() {
				if _, err := tx.InsertBattedBall(ctx, pi.ToBattedBall(gamePK, awayAbbrev)); err != nil {
					return created, fmt.Errorf("failed to insert batted ball %s: %w", pi.PitchID(gamePK), err)
				}
			}
		}
	}

	return created, nil
}

// LoadBoxscore writes one line per player with batting or pitching activity.
// Returns the number of lines written.
func (l *Loaders) LoadBoxscore(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error) {
	written := 0

	for _, teamType := range []string{models.TeamTypeAway, models.TeamTypeHome} {
		side := p.Boxscore.Side(teamType)
		for _, key := range sortedKeys(side.Players) {
			entry := side.Players[key]
			if !entry.HasBatting() && !entry.HasPitching() {
				continue
			}
			playerID, err := models.PlayerID(key)
			if err != nil {
				continue
			}

			if err := tx.UpsertBoxScore(ctx, entry.ToBoxScore(gamePK, playerID, teamType)); err != nil {
				return written, fmt.Errorf("failed to write box score for player %d: %w", playerID, err)
			}
			written++
		}
	}

	return written, nil
}

// LoadWPA writes the per-plate-appearance win expectancy of the game.
// Returns the number of rows created.
func (l *Loaders) LoadWPA(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error) {
	created := 0
	for _, w := range p.ToWPA() {
		w.GamePK = gamePK
		ok, err := tx.InsertWPA(ctx, w)
		if err != nil {
			return created, fmt.Errorf("failed to write wpa %s: %w", w.PlayID, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// LoadSeasonAggregates refreshes the season record of each team, and the
// season lines of its players, when this game is the team's most recent
// Final game. The team lock is held until the transaction ends so that
// concurrent games of the same team take turns. Returns the number of teams
// updated.
func (l *Loaders) LoadSeasonAggregates(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error) {
	season := p.OfficialDate().Year()
	updated := 0

	sides := []string{models.TeamTypeAway, models.TeamTypeHome}
	// Lock in team id order so two games sharing both teams cannot deadlock
	sort.Slice(sides, func(i, j int) bool { return p.TeamID(sides[i]) < p.TeamID(sides[j]) })
	for _, teamType := range sides {
		teamID := p.TeamID(teamType)
		if teamID == 0 {
			continue
		}
		if err := tx.LockTeam(ctx, teamID); err != nil {
			return updated, fmt.Errorf("failed to lock team %d: %w", teamID, err)
		}
	}

	for _, teamType := range sides {
		teamID := p.TeamID(teamType)
		if teamID == 0 {
			continue
		}

		ok, err := l.loadTeamSeason(ctx, tx, p, gamePK, teamType, teamID, season)
		if err != nil {
			return updated, err
		}
		if ok {
			updated++
		}
	}

	return updated, nil
}

func (l *Loaders) loadTeamSeason(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64, teamType string, teamID, season int) (bool, error) {
	latest, err := tx.IsMostRecentFinal(ctx, teamID, gamePK)
	if err != nil {
		return false, fmt.Errorf("failed to check recency for team %d: %w", teamID, err)
	}
	if !latest {
		log.Debug().
			Int64("game_pk", gamePK).
			Int("team_id", teamID).
			Msg("Not the team's most recent final game, skipping season stats")
		return false, nil
	}

	side := p.Boxscore.Side(teamType)
	if err := tx.UpsertTeamSeasonStats(ctx, side.ToTeamSeasonStats(teamID, season, gamePK)); err != nil {
		return false, fmt.Errorf("failed to write season stats for team %d: %w", teamID, err)
	}

	for _, key := range sortedKeys(side.Players) {
		entry := side.Players[key]
		playerID, err := models.PlayerID(key)
		if err != nil {
			continue
		}
		stats := entry.ToPlayerSeasonStats(playerID, teamID, season, gamePK)
		if stats == nil {
			continue
		}
		if err := tx.UpsertPlayerSeasonStats(ctx, stats); err != nil {
			return false, fmt.Errorf("failed to write season stats for player %d: %w", playerID, err)
		}
	}

	return true, nil
}

// sortedKeys gives a stable write order so concurrent writers touch rows in
// the same sequence
func sortedKeys(players map[string]models.BoxscorePlayerInput) []string {
	keys := make([]string, 0, len(players))
	for k := range players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
