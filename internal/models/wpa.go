package models

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// GameWPA is the win expectancy after one plate appearance
type GameWPA struct {
	PlayID      string        `db:"play_id"`
	GamePK      int64         `db:"game_pk"`
	Inning      int           `db:"inning"`
	InningHalf  string        `db:"inning_half"`
	HomeWinExp  float64       `db:"home_win_exp"`
	AwayWinExp  float64       `db:"away_win_exp"`
	WinExpAdded float64       `db:"win_exp_added"`
	BatterID    sql.NullInt64 `db:"batter_id"`
	PitcherID   sql.NullInt64 `db:"pitcher_id"`
	CreatedAt   time.Time     `db:"created_at"`
}

// WPAInput is one gameWpa entry. Probabilities are percentages.
type WPAInput struct {
	Inning                      string    `json:"i"`
	AtBatIndex                  int       `json:"atBatIndex"`
	HomeTeamWinProbability      FlexFloat `json:"homeTeamWinProbability"`
	AwayTeamWinProbability      FlexFloat `json:"awayTeamWinProbability"`
	HomeTeamWinProbabilityAdded FlexFloat `json:"homeTeamWinProbabilityAdded"`
	BatterID                    *int64    `json:"batterId,omitempty"`
	PitcherID                   *int64    `json:"pitcherId,omitempty"`
}

// WPAPlayID keys a WPA row by game and at-bat
func WPAPlayID(gamePK int64, atBatIndex int) string {
	return strconv.FormatInt(gamePK, 10) + "_wpa_" + strconv.Itoa(atBatIndex)
}

// parseWPAInning splits "T3" / "B10" into inning and half. Anything
// unreadable falls back to the top of the first.
func parseWPAInning(s string) (int, string) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 1, InningTop
	}
	half := InningBottom
	if s[0] == 'T' {
		half = InningTop
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		n = 1
	}
	return n, half
}

// ToWPA converts the entry to a GameWPA row with probabilities as fractions
func (w *WPAInput) ToWPA(gamePK int64) *GameWPA {
	inning, half := parseWPAInning(w.Inning)
	return &GameWPA{
		PlayID:      WPAPlayID(gamePK, w.AtBatIndex),
		GamePK:      gamePK,
		Inning:      inning,
		InningHalf:  half,
		HomeWinExp:  w.HomeTeamWinProbability.Value / 100,
		AwayWinExp:  w.AwayTeamWinProbability.Value / 100,
		WinExpAdded: w.HomeTeamWinProbabilityAdded.Value / 100,
		BatterID:    nullInt64(w.BatterID),
		PitcherID:   nullInt64(w.PitcherID),
	}
}

// ToWPA returns the WPA rows of the game in at-bat order
func (p *GamePayload) ToWPA() []*GameWPA {
	gamePK := p.GamePK()
	rows := make([]*GameWPA, 0, len(p.Scoreboard.Stats.WPA.GameWPA))
	for i := range p.Scoreboard.Stats.WPA.GameWPA {
		rows = append(rows, p.Scoreboard.Stats.WPA.GameWPA[i].ToWPA(gamePK))
	}
	return rows
}
