package memstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"
)

// ErrTxClosed is returned when a finished transaction is used
var ErrTxClosed = errors.New("memstore: transaction already closed")

// Tx buffers writes until commit. A Tx must not be shared across goroutines.
type Tx struct {
	store  *Store
	parent *Tx
	ops    []op
	done   bool
	teams  map[int]struct{}
}

func (t *Tx) root() *Tx {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (t *Tx) pending() []op {
	if t.parent == nil {
		return t.ops
	}
	return append(append([]op(nil), t.parent.pending()...), t.ops...)
}

func (t *Tx) view() *dataset {
	return t.store.snapshot(t.pending())
}

func (t *Tx) write(method string, o op) error {
	if t.done {
		return ErrTxClosed
	}
	if err := t.store.fault(method); err != nil {
		return err
	}
	t.ops = append(t.ops, o)
	return nil
}

// Begin opens a nested transaction
func (t *Tx) Begin(ctx context.Context) (store.Tx, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	if err := t.store.fault("Begin"); err != nil {
		return nil, err
	}
	return &Tx{store: t.store, parent: t}, nil
}

// Commit applies buffered writes to the parent, or to the store at top level
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true

	if t.parent != nil {
		t.parent.ops = append(t.parent.ops, t.ops...)
		return nil
	}

	defer t.releaseLocks()
	if err := t.store.fault("Commit"); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	for _, o := range t.ops {
		o(s.data)
	}
	s.mu.Unlock()
	return nil
}

// Rollback discards buffered writes. Rolling back a closed Tx is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.ops = nil
	if t.parent == nil {
		t.releaseLocks()
	}
	return nil
}

func (t *Tx) releaseLocks() {
	for teamID := range t.teams {
		t.store.unlockTeam(teamID)
	}
	t.teams = nil
}

// InsertGame writes the game row, replacing any row with the same id
func (t *Tx) InsertGame(ctx context.Context, game *models.Game) error {
	g := *game
	now := time.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	return t.write("InsertGame", func(d *dataset) {
		d.games[g.GamePK] = &g
	})
}

// EnsureVenue inserts the venue if absent
func (t *Tx) EnsureVenue(ctx context.Context, venue *models.Venue) error {
	v := *venue
	return t.write("EnsureVenue", func(d *dataset) {
		if _, ok := d.venues[v.VenueID]; !ok {
			d.venues[v.VenueID] = &v
		}
	})
}

// UpsertTeam stores the team, keeping known fields the new entry lacks
func (t *Tx) UpsertTeam(ctx context.Context, team *models.Team) error {
	tm := *team
	return t.write("UpsertTeam", func(d *dataset) {
		if old, ok := d.teams[tm.TeamID]; ok {
			if tm.Name == "" {
				tm.Name = old.Name
			}
			for _, f := range []struct{ dst, src *sql.NullString }{
				{&tm.Abbreviation, &old.Abbreviation},
				{&tm.ClubName, &old.ClubName},
				{&tm.LocationName, &old.LocationName},
				{&tm.League, &old.League},
				{&tm.Division, &old.Division},
			} {
				if !f.dst.Valid {
					*f.dst = *f.src
				}
			}
			tm.CreatedAt = old.CreatedAt
		} else {
			tm.CreatedAt = time.Now()
		}
		tm.UpdatedAt = time.Now()
		d.teams[tm.TeamID] = &tm
	})
}

// InsertLineScores replaces the line scores of the game
func (t *Tx) InsertLineScores(ctx context.Context, lines []*models.LineScore) error {
	if len(lines) == 0 {
		return nil
	}
	gamePK := lines[0].GamePK
	rows := make([]*models.LineScore, len(lines))
	for i, l := range lines {
		cp := *l
		rows[i] = &cp
	}
	return t.write("InsertLineScores", func(d *dataset) {
		d.lineScores[gamePK] = rows
	})
}

// EnsurePlayer implements store.Tx
func (t *Tx) EnsurePlayer(ctx context.Context, player *models.Player) (bool, error) {
	if _, exists := t.view().players[player.PlayerID]; exists {
		return false, nil
	}
	p := *player
	p.CreatedAt = time.Now()
	err := t.write("EnsurePlayer", func(d *dataset) {
		if _, ok := d.players[p.PlayerID]; !ok {
			d.players[p.PlayerID] = &p
		}
	})
	return err == nil, err
}

// InsertPitch implements store.Tx
func (t *Tx) InsertPitch(ctx context.Context, pitch *models.Pitch) (bool, error) {
	if _, exists := t.view().pitches[pitch.PitchID]; exists {
		return false, nil
	}
	p := *pitch
	p.CreatedAt = time.Now()
	err := t.write("InsertPitch", func(d *dataset) {
		if _, ok := d.pitches[p.PitchID]; !ok {
			d.pitches[p.PitchID] = &p
		}
	})
	return err == nil, err
}

// InsertBattedBall implements store.Tx
func (t *Tx) InsertBattedBall(ctx context.Context, ball *models.BattedBall) (bool, error) {
	if _, exists := t.view().battedBalls[ball.PlayID]; exists {
		return false, nil
	}
	b := *ball
	b.CreatedAt = time.Now()
	err := t.write("InsertBattedBall", func(d *dataset) {
		if _, ok := d.battedBalls[b.PlayID]; !ok {
			d.battedBalls[b.PlayID] = &b
		}
	})
	return err == nil, err
}

// InsertWPA implements store.Tx
func (t *Tx) InsertWPA(ctx context.Context, wpa *models.GameWPA) (bool, error) {
	if _, exists := t.view().wpa[wpa.PlayID]; exists {
		return false, nil
	}
	w := *wpa
	w.CreatedAt = time.Now()
	err := t.write("InsertWPA", func(d *dataset) {
		if _, ok := d.wpa[w.PlayID]; !ok {
			d.wpa[w.PlayID] = &w
		}
	})
	return err == nil, err
}

// UpsertBoxScore implements store.Tx
func (t *Tx) UpsertBoxScore(ctx context.Context, box *models.BoxScore) error {
	b := *box
	b.CreatedAt = time.Now()
	return t.write("UpsertBoxScore", func(d *dataset) {
		d.boxScores[boxKey{gamePK: b.GamePK, playerID: b.PlayerID, teamType: b.TeamType}] = &b
	})
}

// LockTeam blocks until no other transaction holds the team's lock
func (t *Tx) LockTeam(ctx context.Context, teamID int) error {
	if t.done {
		return ErrTxClosed
	}
	if err := t.store.fault("LockTeam"); err != nil {
		return err
	}
	r := t.root()
	if _, held := r.teams[teamID]; held {
		return nil
	}
	if err := t.store.lockTeam(ctx, teamID); err != nil {
		return err
	}
	if r.teams == nil {
		r.teams = make(map[int]struct{})
	}
	r.teams[teamID] = struct{}{}
	return nil
}

// IsMostRecentFinal implements store.Tx
func (t *Tx) IsMostRecentFinal(ctx context.Context, teamID int, gamePK int64) (bool, error) {
	if t.done {
		return false, ErrTxClosed
	}
	if err := t.store.fault("IsMostRecentFinal"); err != nil {
		return false, err
	}

	var latest *models.Game
	for _, g := range t.view().games {
		if !g.InvolvesTeam(teamID) || !g.IsFinal() {
			continue
		}
		if latest == nil ||
			g.OfficialDate.After(latest.OfficialDate) ||
			(g.OfficialDate.Equal(latest.OfficialDate) && g.GamePK > latest.GamePK) {
			latest = g
		}
	}
	return latest != nil && latest.GamePK == gamePK, nil
}

// UpsertTeamSeasonStats implements store.Tx
func (t *Tx) UpsertTeamSeasonStats(ctx context.Context, stats *models.TeamSeasonStats) error {
	s := *stats
	s.UpdatedAt = time.Now()
	return t.write("UpsertTeamSeasonStats", func(d *dataset) {
		d.teamSeason[seasonKey{id: int64(s.TeamID), season: s.Season}] = &s
	})
}

// UpsertPlayerSeasonStats implements store.Tx
func (t *Tx) UpsertPlayerSeasonStats(ctx context.Context, stats *models.PlayerSeasonStats) error {
	s := *stats
	s.UpdatedAt = time.Now()
	return t.write("UpsertPlayerSeasonStats", func(d *dataset) {
		d.playerSeason[seasonKey{id: s.PlayerID, season: s.Season}] = &s
	})
}

var _ store.Tx = (*Tx)(nil)
