package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(s string) func() time.Time {
	t := day(s).Add(15 * time.Hour)
	return func() time.Time { return t }
}

// fakeFeed serves a fixed schedule and payloads keyed by game id
type fakeFeed struct {
	mu       sync.Mutex
	refs     []models.EventRef
	listErr  error
	payloads map[int64]*models.GamePayload
	fetchErr map[int64]error
	fetches  map[int64]int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		payloads: make(map[int64]*models.GamePayload),
		fetchErr: make(map[int64]error),
		fetches:  make(map[int64]int),
	}
}

// add schedules the payload's game on its date
func (f *fakeFeed) add(p *models.GamePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, models.EventRef{GamePK: p.GamePK(), Date: p.OfficialDate()})
	f.payloads[p.GamePK()] = p
}

func (f *fakeFeed) ListScheduledEvents(ctx context.Context, start, end time.Time) ([]models.EventRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.EventRef
	for _, ref := range f.refs {
		if !ref.Date.Before(start) && !ref.Date.After(end) {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (f *fakeFeed) FetchEvent(ctx context.Context, date time.Time, gamePK int64) (*models.GamePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[gamePK]++
	if err := f.fetchErr[gamePK]; err != nil {
		return nil, err
	}
	p, ok := f.payloads[gamePK]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// testPayload builds a game with one batter per side, a pitcher for the home
// side and the given number of pitches. wins lands in both team records.
func testPayload(gamePK int64, date, status string, home, away int, pitches, wins int) *models.GamePayload {
	p := &models.GamePayload{
		GameDate:   date,
		HomeTeamID: home,
		AwayTeamID: away,
	}
	p.Scoreboard.GamePK = gamePK
	p.Scoreboard.Status.DetailedState = status
	p.HomeTeamData.Abbreviation = fmt.Sprintf("H%d", home)
	p.AwayTeamData.Abbreviation = fmt.Sprintf("A%d", away)

	for _, side := range []*models.BoxscoreTeamInput{&p.Boxscore.Teams.Home, &p.Boxscore.Teams.Away} {
		side.Team.Name = "Team"
		side.Team.Record.Wins = wins
		side.Team.Record.Losses = 3
	}

	p.Boxscore.Teams.Home.Players = map[string]models.BoxscorePlayerInput{
		fmt.Sprintf("ID%d", home*100+1): batter(int64(home*100+1), "Home Hitter", wins),
		fmt.Sprintf("ID%d", home*100+2): pitcher(int64(home*100+2), "Home Starter"),
	}
	p.Boxscore.Teams.Away.Players = map[string]models.BoxscorePlayerInput{
		fmt.Sprintf("ID%d", away*100+1): batter(int64(away*100+1), "Away Hitter", wins),
	}

	for i := 1; i <= pitches; i++ {
		n := i
		p.AwayPitches = append(p.AwayPitches, models.PitchInput{
			PitchNumber: &n,
			TeamBatting: p.AwayTeamData.Abbreviation,
			PitchType:   "FF",
		})
	}
	if pitches > 0 {
		for i := 0; i < 4; i++ {
			p.Scoreboard.Stats.WPA.GameWPA = append(p.Scoreboard.Stats.WPA.GameWPA, models.WPAInput{
				Inning:                      fmt.Sprintf("T%d", i+1),
				AtBatIndex:                  i,
				HomeTeamWinProbability:      models.Float(float64(50 + i)),
				AwayTeamWinProbability:      models.Float(float64(50 - i)),
				HomeTeamWinProbabilityAdded: models.Float(1),
			})
		}
	}
	return p
}

func batter(id int64, name string, seasonHits int) models.BoxscorePlayerInput {
	var bp models.BoxscorePlayerInput
	bp.Person.ID = id
	bp.Person.FullName = name
	bp.Position.Name = "Outfielder"
	bp.Stats.Batting = &models.BattingLineInput{AtBats: 4, PlateAppearances: 4, Hits: 1}
	bp.SeasonStats.Batting = &models.SeasonBattingInput{GamesPlayed: 10, Hits: seasonHits}
	return bp
}

func pitcher(id int64, name string) models.BoxscorePlayerInput {
	var bp models.BoxscorePlayerInput
	bp.Person.ID = id
	bp.Person.FullName = name
	bp.Position.Name = "Pitcher"
	bp.Stats.Pitching = &models.PitchingLineInput{
		InningsPitched: models.Float(6),
		BattersFaced:   24,
	}
	return bp
}

// fakeReader answers state reads from fixed maps
type fakeReader struct {
	mu       sync.Mutex
	counts   []store.DateCount
	countErr error
	games    map[int64]*models.Game
	pitches  map[int64]int
	readErr error
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		games:   make(map[int64]*models.Game),
		pitches: make(map[int64]int),
	}
}

func (r *fakeReader) GameDateCounts(ctx context.Context) ([]store.DateCount, error) {
	return r.counts, r.countErr
}

func (r *fakeReader) GetGame(ctx context.Context, gamePK int64) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	g, ok := r.games[gamePK]
	if !ok {
		return nil, store.ErrNotFound
	}
	return g, nil
}

func (r *fakeReader) CountPitches(ctx context.Context, gamePK int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return 0, r.readErr
	}
	return r.pitches[gamePK], nil
}

// fakeProcessor records concurrency and delegates the result to fn
type fakeProcessor struct {
	delay     time.Duration
	fn        func(ref models.EventRef) bool
	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
}

func (p *fakeProcessor) Process(ctx context.Context, ref models.EventRef) bool {
	p.calls.Add(1)
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		m := p.maxActive.Load()
		if n <= m || p.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	time.Sleep(p.delay)
	if p.fn == nil {
		return true
	}
	return p.fn(ref)
}

func refs(n int, date string) []models.EventRef {
	out := make([]models.EventRef, n)
	for i := range out {
		out[i] = models.EventRef{GamePK: int64(1000 + i), Date: day(date)}
	}
	return out
}

func neverTerminate([]GameState) TerminationReason { return NoTermination }
