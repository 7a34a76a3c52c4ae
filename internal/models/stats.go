package models

import (
	"database/sql"
	"time"
)

// TeamSeasonStats represents a team's running season record.
// LastGamePK is the game whose payload last wrote the row.
type TeamSeasonStats struct {
	TeamID int `db:"team_id"`
	Season int `db:"season"`

	TeamName     string         `db:"team_name"`
	Abbreviation sql.NullString `db:"team_abbreviation"`
	ClubName     sql.NullString `db:"club_name"`
	LocationName sql.NullString `db:"location_name"`

	// League / Division
	LeagueID     sql.NullInt32  `db:"league_id"`
	LeagueName   sql.NullString `db:"league_name"`
	DivisionID   sql.NullInt32  `db:"division_id"`
	DivisionName sql.NullString `db:"division_name"`

	// Record
	Wins        int             `db:"wins"`
	Losses      int             `db:"losses"`
	Ties        int             `db:"ties"`
	GamesPlayed int             `db:"games_played"`
	WinningPct  sql.NullFloat64 `db:"winning_percentage"`

	// Standings
	DivisionRank     sql.NullInt32   `db:"division_rank"`
	GamesBack        sql.NullString  `db:"games_back_division"`
	IsDivisionLeader bool            `db:"is_division_leader"`
	LeagueWins       sql.NullInt32   `db:"league_wins"`
	LeagueLosses     sql.NullInt32   `db:"league_losses"`
	LeaguePct        sql.NullFloat64 `db:"league_pct"`

	LastGamePK int64     `db:"last_game_pk"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// PlayerSeasonStats represents a player's cumulative season line.
// Pitchers carry pitching columns only, everyone else batting and fielding.
type PlayerSeasonStats struct {
	PlayerID        int64  `db:"player_id"`
	Season          int    `db:"season"`
	TeamID          int    `db:"team_id"`
	PlayerName      string `db:"player_name"`
	PrimaryPosition string `db:"primary_position"`

	// Batting
	BattingGamesPlayed sql.NullInt32   `db:"batting_games_played"`
	AtBats             sql.NullInt32   `db:"at_bats"`
	PlateAppearances   sql.NullInt32   `db:"plate_appearances"`
	Runs               sql.NullInt32   `db:"runs"`
	Hits               sql.NullInt32   `db:"hits"`
	Doubles            sql.NullInt32   `db:"doubles"`
	Triples            sql.NullInt32   `db:"triples"`
	HomeRuns           sql.NullInt32   `db:"home_runs"`
	RBI                sql.NullInt32   `db:"rbi"`
	Walks              sql.NullInt32   `db:"walks"`
	Strikeouts         sql.NullInt32   `db:"strikeouts"`
	StolenBases        sql.NullInt32   `db:"stolen_bases"`
	BattingAvg         sql.NullFloat64 `db:"batting_avg"`
	OnBasePct          sql.NullFloat64 `db:"on_base_pct"`
	SluggingPct        sql.NullFloat64 `db:"slugging_pct"`
	OPS                sql.NullFloat64 `db:"ops"`

	// Pitching
	PitchingGamesPlayed sql.NullInt32   `db:"pitching_games_played"`
	GamesStarted        sql.NullInt32   `db:"games_started"`
	PitchingWins        sql.NullInt32   `db:"pitching_wins"`
	PitchingLosses      sql.NullInt32   `db:"pitching_losses"`
	Saves               sql.NullInt32   `db:"saves"`
	InningsPitched      sql.NullFloat64 `db:"innings_pitched"`
	HitsAllowed         sql.NullInt32   `db:"hits_allowed"`
	EarnedRuns          sql.NullInt32   `db:"earned_runs"`
	HomeRunsAllowed     sql.NullInt32   `db:"home_runs_allowed"`
	WalksAllowed        sql.NullInt32   `db:"walks_allowed"`
	PitcherStrikeouts   sql.NullInt32   `db:"pitcher_strikeouts"`
	ERA                 sql.NullFloat64 `db:"era"`
	WHIP                sql.NullFloat64 `db:"whip"`

	// Fielding
	FieldingGames sql.NullInt32   `db:"fielding_games"`
	Putouts       sql.NullInt32   `db:"putouts"`
	Assists       sql.NullInt32   `db:"assists"`
	Errors        sql.NullInt32   `db:"errors"`
	FieldingPct   sql.NullFloat64 `db:"fielding_percentage"`

	LastGamePK int64     `db:"last_game_pk"`
	UpdatedAt  time.Time `db:"updated_at"`
}
