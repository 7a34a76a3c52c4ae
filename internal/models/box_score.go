package models

import (
	"database/sql"
	"time"
)

// BoxScore is one player's line for one game. TeamType is "home" or "away".
type BoxScore struct {
	GamePK       int64         `db:"game_pk"`
	PlayerID     int64         `db:"player_id"`
	TeamType     string        `db:"team_type"`
	PlayerName   string        `db:"player_name"`
	Position     string        `db:"position"`
	BattingOrder sql.NullInt32 `db:"batting_order"`

	// Batting
	AtBats     sql.NullInt32 `db:"at_bats"`
	Runs       sql.NullInt32 `db:"runs"`
	Hits       sql.NullInt32 `db:"hits"`
	RBI        sql.NullInt32 `db:"rbi"`
	Walks      sql.NullInt32 `db:"walks"`
	Strikeouts sql.NullInt32 `db:"strikeouts"`
	Doubles    sql.NullInt32 `db:"doubles"`
	Triples    sql.NullInt32 `db:"triples"`
	HomeRuns   sql.NullInt32 `db:"home_runs"`

	// Pitching
	InningsPitched    sql.NullFloat64 `db:"innings_pitched"`
	EarnedRuns        sql.NullInt32   `db:"earned_runs"`
	PitcherHits       sql.NullInt32   `db:"pitcher_hits"`
	PitcherWalks      sql.NullInt32   `db:"pitcher_walks"`
	PitcherStrikeouts sql.NullInt32   `db:"pitcher_strikeouts"`

	CreatedAt time.Time `db:"created_at"`
}

// HasBatting reports whether the batting columns are populated
func (b *BoxScore) HasBatting() bool {
	return b.AtBats.Valid
}

// HasPitching reports whether the pitching columns are populated
func (b *BoxScore) HasPitching() bool {
	return b.InningsPitched.Valid
}
