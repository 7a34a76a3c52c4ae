// Package memstore is an in-memory store.Store. Transactions buffer their
// writes and apply them to the shared dataset on commit; nested transactions
// fold into their parent. It backs unit tests and dry runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"
)

type boxKey struct {
	gamePK   int64
	playerID int64
	teamType string
}

type seasonKey struct {
	id     int64
	season int
}

type dataset struct {
	games        map[int64]*models.Game
	venues       map[int]*models.Venue
	teams        map[int]*models.Team
	lineScores   map[int64][]*models.LineScore
	players      map[int64]*models.Player
	pitches      map[string]*models.Pitch
	battedBalls  map[string]*models.BattedBall
	wpa          map[string]*models.GameWPA
	boxScores    map[boxKey]*models.BoxScore
	teamSeason   map[seasonKey]*models.TeamSeasonStats
	playerSeason map[seasonKey]*models.PlayerSeasonStats
}

func newDataset() *dataset {
	return &dataset{
		games:        make(map[int64]*models.Game),
		venues:       make(map[int]*models.Venue),
		teams:        make(map[int]*models.Team),
		lineScores:   make(map[int64][]*models.LineScore),
		players:      make(map[int64]*models.Player),
		pitches:      make(map[string]*models.Pitch),
		battedBalls:  make(map[string]*models.BattedBall),
		wpa:          make(map[string]*models.GameWPA),
		boxScores:    make(map[boxKey]*models.BoxScore),
		teamSeason:   make(map[seasonKey]*models.TeamSeasonStats),
		playerSeason: make(map[seasonKey]*models.PlayerSeasonStats),
	}
}

// clone copies the maps. Rows are treated as immutable once stored.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.games {
		c.games[k] = v
	}
	for k, v := range d.venues {
		c.venues[k] = v
	}
	for k, v := range d.teams {
		c.teams[k] = v
	}
	for k, v := range d.lineScores {
		c.lineScores[k] = v
	}
	for k, v := range d.players {
		c.players[k] = v
	}
	for k, v := range d.pitches {
		c.pitches[k] = v
	}
	for k, v := range d.battedBalls {
		c.battedBalls[k] = v
	}
	for k, v := range d.wpa {
		c.wpa[k] = v
	}
	for k, v := range d.boxScores {
		c.boxScores[k] = v
	}
	for k, v := range d.teamSeason {
		c.teamSeason[k] = v
	}
	for k, v := range d.playerSeason {
		c.playerSeason[k] = v
	}
	return c
}

type op func(d *dataset)

// Store is an in-memory store.Store safe for concurrent use
type Store struct {
	mu     sync.Mutex
	data   *dataset
	faults map[string]error

	lockMu    sync.Mutex
	teamLocks map[int]chan struct{}
}

// New creates an empty store
func New() *Store {
	return &Store{
		data:      newDataset(),
		faults:    make(map[string]error),
		teamLocks: make(map[int]chan struct{}),
	}
}

// SetFault makes every call to the named method return err.
// A nil err clears the fault.
func (s *Store) SetFault(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

func (s *Store) fault(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults[method]
}

// snapshot returns a copy of the committed data with ops applied on top
func (s *Store) snapshot(ops []op) *dataset {
	s.mu.Lock()
	d := s.data.clone()
	s.mu.Unlock()
	for _, o := range ops {
		o(d)
	}
	return d
}

// GameDateCounts implements store.Reader
func (s *Store) GameDateCounts(ctx context.Context) ([]store.DateCount, error) {
	if err := s.fault("GameDateCounts"); err != nil {
		return nil, err
	}
	d := s.snapshot(nil)

	byDate := make(map[time.Time]*store.DateCount)
	for _, g := range d.games {
		day := models.DayStart(g.OfficialDate)
		dc, ok := byDate[day]
		if !ok {
			dc = &store.DateCount{Date: day}
			byDate[day] = dc
		}
		dc.Total++
		if g.IsFinal() {
			dc.Final++
		}
	}

	counts := make([]store.DateCount, 0, len(byDate))
	for _, dc := range byDate {
		counts = append(counts, *dc)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Date.After(counts[j].Date) })
	return counts, nil
}

// GetGame implements store.Reader
func (s *Store) GetGame(ctx context.Context, gamePK int64) (*models.Game, error) {
	if err := s.fault("GetGame"); err != nil {
		return nil, err
	}
	d := s.snapshot(nil)
	g, ok := d.games[gamePK]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", gamePK, store.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

// CountPitches implements store.Reader
func (s *Store) CountPitches(ctx context.Context, gamePK int64) (int, error) {
	if err := s.fault("CountPitches"); err != nil {
		return 0, err
	}
	return countPitches(s.snapshot(nil), gamePK), nil
}

func countPitches(d *dataset, gamePK int64) int {
	n := 0
	for _, p := range d.pitches {
		if p.GamePK == gamePK {
			n++
		}
	}
	return n
}

// PurgeGame implements store.Store
func (s *Store) PurgeGame(ctx context.Context, gamePK int64) error {
	if err := s.fault("PurgeGame"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data
	delete(d.games, gamePK)
	delete(d.lineScores, gamePK)
	for id, p := range d.pitches {
		if p.GamePK == gamePK {
			delete(d.pitches, id)
		}
	}
	for id, b := range d.battedBalls {
		if b.GamePK == gamePK {
			delete(d.battedBalls, id)
		}
	}
	for id, w := range d.wpa {
		if w.GamePK == gamePK {
			delete(d.wpa, id)
		}
	}
	for k := range d.boxScores {
		if k.gamePK == gamePK {
			delete(d.boxScores, k)
		}
	}
	return nil
}

// BeginTx implements store.Store
func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	if err := s.fault("BeginTx"); err != nil {
		return nil, err
	}
	return &Tx{store: s}, nil
}

func (s *Store) lockTeam(ctx context.Context, teamID int) error {
	s.lockMu.Lock()
	ch, ok := s.teamLocks[teamID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.teamLocks[teamID] = ch
	}
	s.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockTeam(teamID int) {
	s.lockMu.Lock()
	ch := s.teamLocks[teamID]
	s.lockMu.Unlock()
	<-ch
}

// Games returns all committed games ordered by id
func (s *Store) Games() []*models.Game {
	d := s.snapshot(nil)
	games := make([]*models.Game, 0, len(d.games))
	for _, g := range d.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GamePK < games[j].GamePK })
	return games
}

// Team returns a committed team or nil
func (s *Store) Team(teamID int) *models.Team {
	return s.snapshot(nil).teams[teamID]
}

// Player returns a committed player or nil
func (s *Store) Player(playerID int64) *models.Player {
	return s.snapshot(nil).players[playerID]
}

// Pitches returns the committed pitches of a game ordered by id
func (s *Store) Pitches(gamePK int64) []*models.Pitch {
	d := s.snapshot(nil)
	var out []*models.Pitch
	for _, p := range d.pitches {
		if p.GamePK == gamePK {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PitchID < out[j].PitchID })
	return out
}

// BattedBalls returns the committed batted balls of a game
func (s *Store) BattedBalls(gamePK int64) []*models.BattedBall {
	d := s.snapshot(nil)
	var out []*models.BattedBall
	for _, b := range d.battedBalls {
		if b.GamePK == gamePK {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayID < out[j].PlayID })
	return out
}

// WPA returns the committed win expectancy rows of a game ordered by id
func (s *Store) WPA(gamePK int64) []*models.GameWPA {
	d := s.snapshot(nil)
	var out []*models.GameWPA
	for _, w := range d.wpa {
		if w.GamePK == gamePK {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayID < out[j].PlayID })
	return out
}

// LineScores returns the committed line scores of a game
func (s *Store) LineScores(gamePK int64) []*models.LineScore {
	return s.snapshot(nil).lineScores[gamePK]
}

// BoxScores returns the committed box scores of a game ordered by player
func (s *Store) BoxScores(gamePK int64) []*models.BoxScore {
	d := s.snapshot(nil)
	var out []*models.BoxScore
	for k, b := range d.boxScores {
		if k.gamePK == gamePK {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].TeamType < out[j].TeamType
	})
	return out
}

// TeamSeasonStats returns a committed team season row or nil
func (s *Store) TeamSeasonStats(teamID, season int) *models.TeamSeasonStats {
	return s.snapshot(nil).teamSeason[seasonKey{id: int64(teamID), season: season}]
}

// PlayerSeasonStats returns a committed player season row or nil
func (s *Store) PlayerSeasonStats(playerID int64, season int) *models.PlayerSeasonStats {
	return s.snapshot(nil).playerSeason[seasonKey{id: playerID, season: season}]
}

var _ store.Store = (*Store)(nil)
