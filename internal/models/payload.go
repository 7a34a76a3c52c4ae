package models

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GamePayload is the decoded game feed document for one game.
// It combines the scoreboard, boxscore and per-team pitch lists.
type GamePayload struct {
	Scoreboard   ScoreboardInput `json:"scoreboard"`
	GameDate     string          `json:"gameDate"`
	GamedayType  string          `json:"gamedayType"`
	GameGUID     string          `json:"game_guid"`
	HomeTeamID   int             `json:"team_home_id"`
	AwayTeamID   int             `json:"team_away_id"`
	HomeTeamData TeamDataInput   `json:"home_team_data"`
	AwayTeamData TeamDataInput   `json:"away_team_data"`
	VenueID      *int            `json:"venue_id,omitempty"`
	VenueName    string          `json:"venue_name"`
	Boxscore     BoxscoreInput   `json:"boxscore"`
	HomePitches  []PitchInput    `json:"team_home"`
	AwayPitches  []PitchInput    `json:"team_away"`

	// RequestedDate is the schedule date the payload was fetched for.
	// Used when gameDate is missing or unparseable.
	RequestedDate time.Time `json:"-"`
}

// ScoreboardInput is the scoreboard section of the game feed
type ScoreboardInput struct {
	GamePK    int64          `json:"gamePk"`
	GameGUID  string         `json:"gameGuid"`
	Status    StatusInput    `json:"status"`
	Linescore LinescoreInput `json:"linescore"`
	Venue     struct {
		Name string `json:"name"`
	} `json:"venue"`
	Stats struct {
		WPA struct {
			GameWPA []WPAInput `json:"gameWpa"`
		} `json:"wpa"`
	} `json:"stats"`
}

// StatusInput carries the three status representations of the feed
type StatusInput struct {
	AbstractGameState string `json:"abstractGameState"`
	CodedGameState    string `json:"codedGameState"`
	DetailedState     string `json:"detailedState"`
}

// LinescoreInput is the game line score with per-inning detail
type LinescoreInput struct {
	CurrentInning    *int   `json:"currentInning,omitempty"`
	InningState      string `json:"inningState"`
	ScheduledInnings *int   `json:"scheduledInnings,omitempty"`
	Teams            struct {
		Home TeamLineInput `json:"home"`
		Away TeamLineInput `json:"away"`
	} `json:"teams"`
	Innings []InningInput `json:"innings"`
}

// TeamLineInput is a runs/hits/errors line
type TeamLineInput struct {
	Runs       *int `json:"runs,omitempty"`
	Hits       *int `json:"hits,omitempty"`
	Errors     *int `json:"errors,omitempty"`
	LeftOnBase *int `json:"leftOnBase,omitempty"`
}

// InningInput is one inning of the line score
type InningInput struct {
	Num  int            `json:"num"`
	Home *TeamLineInput `json:"home,omitempty"`
	Away *TeamLineInput `json:"away,omitempty"`
}

// TeamDataInput is the top-level team descriptor of the feed
type TeamDataInput struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	TeamName     string `json:"teamName"`
	Abbreviation string `json:"abbreviation"`
}

// BoxscoreInput is the boxscore section of the game feed
type BoxscoreInput struct {
	Teams struct {
		Home BoxscoreTeamInput `json:"home"`
		Away BoxscoreTeamInput `json:"away"`
	} `json:"teams"`
}

// Side returns the boxscore for "home" or "away"
func (b *BoxscoreInput) Side(teamType string) *BoxscoreTeamInput {
	if teamType == TeamTypeHome {
		return &b.Teams.Home
	}
	return &b.Teams.Away
}

// BoxscoreTeamInput holds a team's descriptor, record and players
type BoxscoreTeamInput struct {
	Team    TeamInfoInput                  `json:"team"`
	Players map[string]BoxscorePlayerInput `json:"players"`
}

// TeamInfoInput describes a team and its current standing
type TeamInfoInput struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbreviation"`
	ClubName     string     `json:"clubName"`
	LocationName string     `json:"locationName"`
	League       NamedInput `json:"league"`
	Division     NamedInput `json:"division"`
	Record       struct {
		Wins         int       `json:"wins"`
		Losses       int       `json:"losses"`
		Ties         int       `json:"ties"`
		Pct          FlexFloat `json:"pct"`
		DivisionRank FlexFloat `json:"divisionRank"`
		GamesBack    string    `json:"gamesBack"`
		LeagueRecord struct {
			Wins   *int      `json:"wins,omitempty"`
			Losses *int      `json:"losses,omitempty"`
			Pct    FlexFloat `json:"pct"`
		} `json:"leagueRecord"`
	} `json:"record"`
}

// NamedInput is an {id, name} reference
type NamedInput struct {
	ID   *int   `json:"id,omitempty"`
	Name string `json:"name"`
}

// BoxscorePlayerInput is one player entry of a team boxscore
type BoxscorePlayerInput struct {
	Person struct {
		ID        int64  `json:"id"`
		FullName  string `json:"fullName"`
		BatSide   struct{ Code string `json:"code"` } `json:"batSide"`
		PitchHand struct{ Code string `json:"code"` } `json:"pitchHand"`
	} `json:"person"`
	Position struct {
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	BattingOrder string `json:"battingOrder"`
	Stats        struct {
		Batting  *BattingLineInput  `json:"batting,omitempty"`
		Pitching *PitchingLineInput `json:"pitching,omitempty"`
	} `json:"stats"`
	SeasonStats struct {
		Batting  *SeasonBattingInput  `json:"batting,omitempty"`
		Pitching *SeasonPitchingInput `json:"pitching,omitempty"`
		Fielding *SeasonFieldingInput `json:"fielding,omitempty"`
	} `json:"seasonStats"`
}

// BattingLineInput is a single-game batting line
type BattingLineInput struct {
	AtBats           int `json:"atBats"`
	PlateAppearances int `json:"plateAppearances"`
	Runs             int `json:"runs"`
	Hits             int `json:"hits"`
	RBI              int `json:"rbi"`
	BaseOnBalls      int `json:"baseOnBalls"`
	StrikeOuts       int `json:"strikeOuts"`
	Doubles          int `json:"doubles"`
	Triples          int `json:"triples"`
	HomeRuns         int `json:"homeRuns"`
}

// PitchingLineInput is a single-game pitching line
type PitchingLineInput struct {
	InningsPitched FlexFloat `json:"inningsPitched"`
	BattersFaced   int       `json:"battersFaced"`
	EarnedRuns     int       `json:"earnedRuns"`
	Hits           int       `json:"hits"`
	BaseOnBalls    int       `json:"baseOnBalls"`
	StrikeOuts     int       `json:"strikeOuts"`
}

// SeasonBattingInput is a season-to-date batting line
type SeasonBattingInput struct {
	GamesPlayed      int       `json:"gamesPlayed"`
	AtBats           int       `json:"atBats"`
	PlateAppearances int       `json:"plateAppearances"`
	Runs             int       `json:"runs"`
	Hits             int       `json:"hits"`
	Doubles          int       `json:"doubles"`
	Triples          int       `json:"triples"`
	HomeRuns         int       `json:"homeRuns"`
	RBI              int       `json:"rbi"`
	BaseOnBalls      int       `json:"baseOnBalls"`
	StrikeOuts       int       `json:"strikeOuts"`
	StolenBases      int       `json:"stolenBases"`
	Avg              FlexFloat `json:"avg"`
	OBP              FlexFloat `json:"obp"`
	SLG              FlexFloat `json:"slg"`
	OPS              FlexFloat `json:"ops"`
}

// SeasonPitchingInput is a season-to-date pitching line
type SeasonPitchingInput struct {
	GamesPlayed    int       `json:"gamesPlayed"`
	GamesStarted   int       `json:"gamesStarted"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Saves          int       `json:"saves"`
	InningsPitched FlexFloat `json:"inningsPitched"`
	Hits           int       `json:"hits"`
	EarnedRuns     int       `json:"earnedRuns"`
	HomeRuns       int       `json:"homeRuns"`
	BaseOnBalls    int       `json:"baseOnBalls"`
	StrikeOuts     int       `json:"strikeOuts"`
	ERA            FlexFloat `json:"era"`
	WHIP           FlexFloat `json:"whip"`
}

// SeasonFieldingInput is a season-to-date fielding line
type SeasonFieldingInput struct {
	Games    int       `json:"games"`
	PutOuts  int       `json:"putOuts"`
	Assists  int       `json:"assists"`
	Errors   int       `json:"errors"`
	Fielding FlexFloat `json:"fielding"`
}

// PitchInput is one pitch of the Statcast pitch lists
type PitchInput struct {
	PlayID       string    `json:"play_id"`
	ABNumber     *int      `json:"ab_number,omitempty"`
	PitchNumber  *int      `json:"pitch_number,omitempty"`
	Pitcher      *int64    `json:"pitcher,omitempty"`
	Batter       *int64    `json:"batter,omitempty"`
	Inning       *int      `json:"inning,omitempty"`
	TeamBatting  string    `json:"team_batting"`
	TeamFielding string    `json:"team_fielding"`
	Balls        *int      `json:"balls,omitempty"`
	Strikes      *int      `json:"strikes,omitempty"`
	Outs         *int      `json:"outs,omitempty"`
	PitchType    string    `json:"pitch_type"`
	PitchName    string    `json:"pitch_name"`
	StartSpeed   FlexFloat `json:"start_speed"`
	X0           FlexFloat `json:"x0"`
	Z0           FlexFloat `json:"z0"`
	Extension    FlexFloat `json:"extension"`
	PfxX         FlexFloat `json:"pfxX"`
	PfxZ         FlexFloat `json:"pfxZ"`
	Px           FlexFloat `json:"px"`
	Pz           FlexFloat `json:"pz"`
	SpinRate     FlexFloat `json:"spin_rate"`
	Zone         *int      `json:"zone,omitempty"`
	Call         string    `json:"call"`
	CallName     string    `json:"call_name"`
	Result       string    `json:"result"`
	HitSpeed     FlexFloat `json:"hit_speed"`
	HitAngle     FlexFloat `json:"hit_angle"`
	HitDistance  FlexFloat `json:"hit_distance"`
	HcX          FlexFloat `json:"hc_x"`
	HcY          FlexFloat `json:"hc_y"`
}

// Team types used for line scores and box scores
const (
	TeamTypeHome = "home"
	TeamTypeAway = "away"
)

// Inning halves
const (
	InningTop    = "top"
	InningBottom = "bottom"
)

// GamePK returns the game id carried by the scoreboard
func (p *GamePayload) GamePK() int64 {
	return p.Scoreboard.GamePK
}

// TeamID returns the team id for "home" or "away"
func (p *GamePayload) TeamID(teamType string) int {
	if teamType == TeamTypeHome {
		if p.HomeTeamID != 0 {
			return p.HomeTeamID
		}
		return p.HomeTeamData.ID
	}
	if p.AwayTeamID != 0 {
		return p.AwayTeamID
	}
	return p.AwayTeamData.ID
}

// OfficialDate parses gameDate, falling back to RequestedDate
func (p *GamePayload) OfficialDate() time.Time {
	for _, layout := range []string{"1/2/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(p.GameDate)); err == nil {
			return DayStart(t)
		}
	}
	return DayStart(p.RequestedDate)
}

// ToGame converts the payload to a Game model
func (p *GamePayload) ToGame() (*Game, error) {
	gamePK := p.GamePK()
	if gamePK == 0 {
		return nil, fmt.Errorf("payload has no scoreboard.gamePk")
	}

	date := p.OfficialDate()
	ls := p.Scoreboard.Linescore
	status := p.Scoreboard.Status

	game := &Game{
		GamePK:           gamePK,
		GameGUID:         firstNonEmpty(p.Scoreboard.GameGUID, p.GameGUID, fmt.Sprintf("mlb-%d-%s", gamePK, date.Format("20060102"))),
		GameType:         firstNonEmpty(p.GamedayType, "R"),
		OfficialDate:     date,
		Season:           date.Year(),
		HomeTeamID:       p.TeamID(TeamTypeHome),
		AwayTeamID:       p.TeamID(TeamTypeAway),
		StatusAbstract:   firstNonEmpty(status.AbstractGameState, "Preview"),
		StatusCoded:      firstNonEmpty(status.CodedGameState, "S"),
		Status:           firstNonEmpty(status.DetailedState, "Scheduled"),
		CurrentInning:    nullInt32(ls.CurrentInning),
		InningState:      nullString(ls.InningState),
		ScheduledInnings: 9,
		HomeScore:        nullInt32(ls.Teams.Home.Runs),
		AwayScore:        nullInt32(ls.Teams.Away.Runs),
		HomeHits:         nullInt32(ls.Teams.Home.Hits),
		AwayHits:         nullInt32(ls.Teams.Away.Hits),
		HomeErrors:       nullInt32(ls.Teams.Home.Errors),
		AwayErrors:       nullInt32(ls.Teams.Away.Errors),
	}
	if ls.ScheduledInnings != nil {
		game.ScheduledInnings = *ls.ScheduledInnings
	}
	game.HomeTeamName = nullString(firstNonEmpty(p.HomeTeamData.TeamName, p.HomeTeamData.Name))
	game.HomeTeamAbbreviation = nullString(p.HomeTeamData.Abbreviation)
	game.AwayTeamName = nullString(firstNonEmpty(p.AwayTeamData.TeamName, p.AwayTeamData.Name))
	game.AwayTeamAbbreviation = nullString(p.AwayTeamData.Abbreviation)
	if p.VenueID != nil {
		game.VenueID = sql.NullInt32{Int32: int32(*p.VenueID), Valid: true}
	}

	return game, nil
}

// ToVenue returns the venue referenced by the payload, or nil
func (p *GamePayload) ToVenue() *Venue {
	if p.VenueID == nil {
		return nil
	}
	name := firstNonEmpty(p.VenueName, p.Scoreboard.Venue.Name, fmt.Sprintf("Venue %d", *p.VenueID))
	return &Venue{VenueID: *p.VenueID, Name: name}
}

// ToLineScores flattens the inning list to one row per team per inning
func (p *GamePayload) ToLineScores() []*LineScore {
	var lines []*LineScore
	for _, inning := range p.Scoreboard.Linescore.Innings {
		if inning.Num <= 0 {
			continue
		}
		if inning.Home != nil {
			lines = append(lines, inning.Home.toLineScore(p.GamePK(), inning.Num, TeamTypeHome))
		}
		if inning.Away != nil {
			lines = append(lines, inning.Away.toLineScore(p.GamePK(), inning.Num, TeamTypeAway))
		}
	}
	return lines
}

func (t *TeamLineInput) toLineScore(gamePK int64, inning int, teamType string) *LineScore {
	return &LineScore{
		GamePK:     gamePK,
		Inning:     inning,
		TeamType:   teamType,
		Runs:       intOrZero(t.Runs),
		Hits:       intOrZero(t.Hits),
		Errors:     intOrZero(t.Errors),
		LeftOnBase: intOrZero(t.LeftOnBase),
	}
}

// PlayerID parses a boxscore key of the form "ID123456"
func PlayerID(key string) (int64, error) {
	if !strings.HasPrefix(key, "ID") {
		return 0, fmt.Errorf("unexpected player key %q", key)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(key, "ID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid player key %q: %w", key, err)
	}
	return id, nil
}

// ToPlayer converts a boxscore entry to a Player
func (bp *BoxscorePlayerInput) ToPlayer(playerID int64) *Player {
	return &Player{
		PlayerID:        playerID,
		FullName:        strings.TrimSpace(bp.Person.FullName),
		BatSide:         nullString(bp.Person.BatSide.Code),
		PitchHand:       nullString(bp.Person.PitchHand.Code),
		PrimaryPosition: nullString(bp.Position.Name),
	}
}

// HasBatting reports whether the player came to the plate
func (bp *BoxscorePlayerInput) HasBatting() bool {
	b := bp.Stats.Batting
	return b != nil && (b.AtBats > 0 || b.PlateAppearances > 0)
}

// HasPitching reports whether the player pitched
func (bp *BoxscorePlayerInput) HasPitching() bool {
	p := bp.Stats.Pitching
	return p != nil && ((p.InningsPitched.Valid && p.InningsPitched.Value > 0) || p.BattersFaced > 0)
}

// ToBoxScore converts a boxscore entry to a BoxScore line
func (bp *BoxscorePlayerInput) ToBoxScore(gamePK, playerID int64, teamType string) *BoxScore {
	box := &BoxScore{
		GamePK:     gamePK,
		PlayerID:   playerID,
		TeamType:   teamType,
		PlayerName: firstNonEmpty(bp.Person.FullName, fmt.Sprintf("Player %d", playerID)),
		Position:   firstNonEmpty(bp.Position.Name, "Unknown"),
	}
	if order, err := strconv.Atoi(bp.BattingOrder); err == nil {
		box.BattingOrder = sql.NullInt32{Int32: int32(order), Valid: true}
	}

	if bp.HasBatting() {
		b := bp.Stats.Batting
		box.AtBats = int32Of(b.AtBats)
		box.Runs = int32Of(b.Runs)
		box.Hits = int32Of(b.Hits)
		box.RBI = int32Of(b.RBI)
		box.Walks = int32Of(b.BaseOnBalls)
		box.Strikeouts = int32Of(b.StrikeOuts)
		box.Doubles = int32Of(b.Doubles)
		box.Triples = int32Of(b.Triples)
		box.HomeRuns = int32Of(b.HomeRuns)
	}

	if bp.HasPitching() {
		p := bp.Stats.Pitching
		box.InningsPitched = sql.NullFloat64{Float64: p.InningsPitched.Value, Valid: true}
		box.EarnedRuns = int32Of(p.EarnedRuns)
		box.PitcherHits = int32Of(p.Hits)
		box.PitcherWalks = int32Of(p.BaseOnBalls)
		box.PitcherStrikeouts = int32Of(p.StrikeOuts)
	}

	return box
}

// ToPlayerSeasonStats converts the seasonStats block of a boxscore entry.
// Returns nil when the entry carries no season stats.
func (bp *BoxscorePlayerInput) ToPlayerSeasonStats(playerID int64, teamID, season int, gamePK int64) *PlayerSeasonStats {
	ss := bp.SeasonStats
	if ss.Batting == nil && ss.Pitching == nil && ss.Fielding == nil {
		return nil
	}

	position := firstNonEmpty(bp.Position.Name, "Unknown")
	stats := &PlayerSeasonStats{
		PlayerID:        playerID,
		Season:          season,
		TeamID:          teamID,
		PlayerName:      firstNonEmpty(bp.Person.FullName, fmt.Sprintf("Player %d", playerID)),
		PrimaryPosition: position,
		LastGamePK:      gamePK,
	}

	if strings.Contains(position, "Pitcher") {
		if p := ss.Pitching; p != nil {
			stats.PitchingGamesPlayed = int32Of(p.GamesPlayed)
			stats.GamesStarted = int32Of(p.GamesStarted)
			stats.PitchingWins = int32Of(p.Wins)
			stats.PitchingLosses = int32Of(p.Losses)
			stats.Saves = int32Of(p.Saves)
			stats.InningsPitched = p.InningsPitched.NullFloat64()
			stats.HitsAllowed = int32Of(p.Hits)
			stats.EarnedRuns = int32Of(p.EarnedRuns)
			stats.HomeRunsAllowed = int32Of(p.HomeRuns)
			stats.WalksAllowed = int32Of(p.BaseOnBalls)
			stats.PitcherStrikeouts = int32Of(p.StrikeOuts)
			stats.ERA = p.ERA.NullFloat64()
			stats.WHIP = p.WHIP.NullFloat64()
		}
		return stats
	}

	if b := ss.Batting; b != nil {
		stats.BattingGamesPlayed = int32Of(b.GamesPlayed)
		stats.AtBats = int32Of(b.AtBats)
		stats.PlateAppearances = int32Of(b.PlateAppearances)
		stats.Runs = int32Of(b.Runs)
		stats.Hits = int32Of(b.Hits)
		stats.Doubles = int32Of(b.Doubles)
		stats.Triples = int32Of(b.Triples)
		stats.HomeRuns = int32Of(b.HomeRuns)
		stats.RBI = int32Of(b.RBI)
		stats.Walks = int32Of(b.BaseOnBalls)
		stats.Strikeouts = int32Of(b.StrikeOuts)
		stats.StolenBases = int32Of(b.StolenBases)
		stats.BattingAvg = b.Avg.NullFloat64()
		stats.OnBasePct = b.OBP.NullFloat64()
		stats.SluggingPct = b.SLG.NullFloat64()
		stats.OPS = b.OPS.NullFloat64()
	}
	if f := ss.Fielding; f != nil && position != "Designated Hitter" {
		stats.FieldingGames = int32Of(f.Games)
		stats.Putouts = int32Of(f.PutOuts)
		stats.Assists = int32Of(f.Assists)
		stats.Errors = int32Of(f.Errors)
		stats.FieldingPct = f.Fielding.NullFloat64()
	}
	return stats
}

// ToTeamSeasonStats converts a boxscore team block to a season record
func (bt *BoxscoreTeamInput) ToTeamSeasonStats(teamID, season int, gamePK int64) *TeamSeasonStats {
	t := bt.Team
	rec := t.Record
	stats := &TeamSeasonStats{
		TeamID:       teamID,
		Season:       season,
		TeamName:     t.Name,
		Abbreviation: nullString(t.Abbreviation),
		ClubName:     nullString(t.ClubName),
		LocationName: nullString(t.LocationName),
		LeagueID:     nullInt32(t.League.ID),
		LeagueName:   nullString(t.League.Name),
		DivisionID:   nullInt32(t.Division.ID),
		DivisionName: nullString(t.Division.Name),
		Wins:         rec.Wins,
		Losses:       rec.Losses,
		Ties:         rec.Ties,
		GamesPlayed:  rec.Wins + rec.Losses + rec.Ties,
		WinningPct:   rec.Pct.NullFloat64(),
		DivisionRank: rec.DivisionRank.NullInt32(),
		GamesBack:    nullString(rec.GamesBack),
		LeagueWins:   nullInt32(rec.LeagueRecord.Wins),
		LeagueLosses: nullInt32(rec.LeagueRecord.Losses),
		LeaguePct:    rec.LeagueRecord.Pct.NullFloat64(),
		LastGamePK:   gamePK,
	}
	stats.IsDivisionLeader = stats.DivisionRank.Valid && stats.DivisionRank.Int32 == 1
	return stats
}

// PitchID returns the stable id of a pitch: the Statcast play id when present,
// otherwise "<gamePk>_<pitchNumber>".
func (pi *PitchInput) PitchID(gamePK int64) string {
	if pi.PlayID != "" {
		return pi.PlayID
	}
	return fmt.Sprintf("%d_%d", gamePK, intOrZero(pi.PitchNumber))
}

// InningHalf derives top/bottom from which side is batting
func (pi *PitchInput) InningHalf(awayAbbreviation string) string {
	if awayAbbreviation != "" && pi.TeamBatting == awayAbbreviation {
		return InningTop
	}
	if awayAbbreviation == "" {
		return ""
	}
	return InningBottom
}

// IsBattedBall reports whether the pitch was put in play with hit coordinates
func (pi *PitchInput) IsBattedBall() bool {
	return pi.Call == "X" && pi.HcX.Valid && pi.HcY.Valid
}

// ToPitch converts a pitch entry to a Pitch
func (pi *PitchInput) ToPitch(gamePK int64, awayAbbreviation string) *Pitch {
	return &Pitch{
		PitchID:      pi.PitchID(gamePK),
		GamePK:       gamePK,
		ABNumber:     nullInt32(pi.ABNumber),
		PitchNumber:  nullInt32(pi.PitchNumber),
		PitcherID:    nullInt64(pi.Pitcher),
		BatterID:     nullInt64(pi.Batter),
		Inning:       nullInt32(pi.Inning),
		InningHalf:   pi.InningHalf(awayAbbreviation),
		Balls:        nullInt32(pi.Balls),
		Strikes:      nullInt32(pi.Strikes),
		Outs:         nullInt32(pi.Outs),
		PitchType:    nullString(pi.PitchType),
		PitchName:    nullString(pi.PitchName),
		ReleaseSpeed: pi.StartSpeed.NullFloat64(),
		ReleasePosX:  pi.X0.NullFloat64(),
		ReleasePosZ:  pi.Z0.NullFloat64(),
		Extension:    pi.Extension.NullFloat64(),
		PfxX:         pi.PfxX.NullFloat64(),
		PfxZ:         pi.PfxZ.NullFloat64(),
		PlateX:       pi.Px.NullFloat64(),
		PlateZ:       pi.Pz.NullFloat64(),
		SpinRate:     pi.SpinRate.NullFloat64(),
		Zone:         nullInt32(pi.Zone),
		PitchResult:  nullString(pi.CallName),
		PlayResult:   nullString(pi.Result),
	}
}

// ToBattedBall converts an in-play pitch to a BattedBall
func (pi *PitchInput) ToBattedBall(gamePK int64, awayAbbreviation string) *BattedBall {
	return &BattedBall{
		PlayID:       pi.PitchID(gamePK),
		GamePK:       gamePK,
		BatterID:     nullInt64(pi.Batter),
		PitcherID:    nullInt64(pi.Pitcher),
		Inning:       nullInt32(pi.Inning),
		InningHalf:   pi.InningHalf(awayAbbreviation),
		ExitVelocity: pi.HitSpeed.NullFloat64(),
		LaunchAngle:  pi.HitAngle.NullFloat64(),
		HitDistance:  pi.HitDistance.NullFloat64(),
		HitCoordX:    pi.HcX.NullFloat64(),
		HitCoordY:    pi.HcY.NullFloat64(),
		Result:       nullString(pi.Result),
		BBType:       nullString(pi.CallName),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int32Of(v int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(v), Valid: true}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
