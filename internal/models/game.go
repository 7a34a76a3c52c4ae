package models

import (
	"database/sql"
	"time"
)

// Game represents one MLB game as persisted in the games table
type Game struct {
	GamePK       int64     `db:"game_pk"`
	GameGUID     string    `db:"game_guid"`
	GameType     string    `db:"game_type"`
	OfficialDate time.Time `db:"official_date"`
	Season       int       `db:"season"`

	HomeTeamID           int            `db:"home_team_id"`
	HomeTeamName         sql.NullString `db:"home_team_name"`
	HomeTeamAbbreviation sql.NullString `db:"home_team_abbreviation"`
	AwayTeamID           int            `db:"away_team_id"`
	AwayTeamName         sql.NullString `db:"away_team_name"`
	AwayTeamAbbreviation sql.NullString `db:"away_team_abbreviation"`

	VenueID sql.NullInt32 `db:"venue_id"`

	// Status
	StatusAbstract string `db:"status_abstract"`
	StatusCoded    string `db:"status_coded"`
	Status         string `db:"status_detailed"`

	CurrentInning    sql.NullInt32  `db:"current_inning"`
	InningState      sql.NullString `db:"inning_state"`
	ScheduledInnings int            `db:"scheduled_innings"`

	// Score summary
	HomeScore  sql.NullInt32 `db:"home_score"`
	AwayScore  sql.NullInt32 `db:"away_score"`
	HomeHits   sql.NullInt32 `db:"home_hits"`
	AwayHits   sql.NullInt32 `db:"away_hits"`
	HomeErrors sql.NullInt32 `db:"home_errors"`
	AwayErrors sql.NullInt32 `db:"away_errors"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsFinal reports whether the game is in a terminal complete state
func (g *Game) IsFinal() bool {
	return IsFinalStatus(g.Status)
}

// InvolvesTeam reports whether teamID played in the game
func (g *Game) InvolvesTeam(teamID int) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// Venue represents a ballpark referenced by games
type Venue struct {
	VenueID   int       `db:"venue_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// LineScore is one team's line for one inning of a game
type LineScore struct {
	GamePK     int64  `db:"game_pk"`
	Inning     int    `db:"inning"`
	TeamType   string `db:"team_type"`
	Runs       int    `db:"runs"`
	Hits       int    `db:"hits"`
	Errors     int    `db:"errors"`
	LeftOnBase int    `db:"left_on_base"`
}

// EventRef identifies a candidate game for ingestion
type EventRef struct {
	GamePK int64
	Date   time.Time
}

// Window is the inclusive range of dates one ingestion run is responsible for
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the window
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int(DayStart(w.End).Sub(DayStart(w.Start)).Hours()/24) + 1
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayStart returns 00:00:00 UTC of t's calendar day, read in t's own
// location. Dates are stored and compared as UTC midnights.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayEnd returns 23:59:59.999 UTC of t's calendar day
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Millisecond)
}
