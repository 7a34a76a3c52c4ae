package models

import (
	"database/sql"
	"time"
)

// Team is a club in the team directory
type Team struct {
	TeamID       int            `db:"team_id"`
	Name         string         `db:"name"`
	Abbreviation sql.NullString `db:"abbreviation"`
	ClubName     sql.NullString `db:"club_name"`
	LocationName sql.NullString `db:"location_name"`
	League       sql.NullString `db:"league"`
	Division     sql.NullString `db:"division"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// ToTeam converts the boxscore team descriptor to a Team.
// fallback fills in what the boxscore omits.
func (ti *TeamInfoInput) ToTeam(fallback TeamDataInput) *Team {
	id := ti.ID
	if id == 0 {
		id = fallback.ID
	}
	if id == 0 {
		return nil
	}

	team := &Team{
		TeamID:       id,
		Name:         firstNonEmpty(ti.Name, fallback.Name, fallback.TeamName),
		Abbreviation: nullString(firstNonEmpty(ti.Abbreviation, fallback.Abbreviation)),
		ClubName:     nullString(firstNonEmpty(ti.ClubName, fallback.TeamName)),
		LocationName: nullString(ti.LocationName),
		League:       nullString(ti.League.Name),
		Division:     nullString(ti.Division.Name),
	}
	return team
}

// ToTeams returns the directory entries for both clubs of the game
func (p *GamePayload) ToTeams() []*Team {
	var teams []*Team
	for _, side := range []string{TeamTypeAway, TeamTypeHome} {
		data := p.AwayTeamData
		if side == TeamTypeHome {
			data = p.HomeTeamData
		}
		if data.ID == 0 {
			data.ID = p.TeamID(side)
		}
		if t := p.Boxscore.Side(side).Team.ToTeam(data); t != nil {
			teams = append(teams, t)
		}
	}
	return teams
}
