package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/rs/zerolog/log"
)

// Schedule lists the games the upstream feed knows for a date range
type Schedule interface {
	ListScheduledEvents(ctx context.Context, start, end time.Time) ([]models.EventRef, error)
}

// Breakdown counts discovered games by stored status
type Breakdown struct {
	Final      int
	InProgress int
	Scheduled  int // includes games not yet stored
	Postponed  int
	Other      int
	Included   int
	Skipped    int
}

// Discovery turns a window into the list of games that need processing
type Discovery struct {
	schedule Schedule
	reader   store.Reader

	// Force includes Final games instead of skipping them
	Force bool

	mu        sync.Mutex
	breakdown Breakdown
}

// NewDiscovery creates a Discovery
func NewDiscovery(schedule Schedule, reader store.Reader) *Discovery {
	return &Discovery{schedule: schedule, reader: reader}
}

// ListCandidates returns the window's games that are not yet Final, ordered
// by date then game id. Feed or storage failures are logged and yield an
// empty list.
func (d *Discovery) ListCandidates(ctx context.Context, w models.Window) []models.EventRef {
	var bd Breakdown
	defer func() {
		d.mu.Lock()
		d.breakdown = bd
		d.mu.Unlock()
	}()

	refs, err := d.schedule.ListScheduledEvents(ctx, w.Start, w.End)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list scheduled games")
		return nil
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if !refs[i].Date.Equal(refs[j].Date) {
			return refs[i].Date.Before(refs[j].Date)
		}
		return refs[i].GamePK < refs[j].GamePK
	})

	seen := make(map[int64]struct{}, len(refs))
	candidates := make([]models.EventRef, 0, len(refs))
	for _, ref := range refs {
		// Suspended games reappear on their resumption date
		if _, dup := seen[ref.GamePK]; dup {
			continue
		}
		seen[ref.GamePK] = struct{}{}

		game, err := d.reader.GetGame(ctx, ref.GamePK)
		switch {
		case errors.Is(err, store.ErrNotFound):
			bd.Scheduled++
		case err != nil:
			log.Error().Err(err).Int64("game_pk", ref.GamePK).Msg("Failed to look up game")
			bd = Breakdown{}
			return nil
		default:
			switch models.StatusBucket(game.Status) {
			case models.BucketFinal:
				bd.Final++
			case models.BucketInProgress:
				bd.InProgress++
			case models.BucketScheduled:
				bd.Scheduled++
			case models.BucketPostponed:
				bd.Postponed++
			default:
				bd.Other++
			}
			if game.IsFinal() && !d.Force {
				bd.Skipped++
				continue
			}
		}

		bd.Included++
		candidates = append(candidates, ref)
	}

	log.Info().
		Int("scheduled", len(refs)).
		Int("final", bd.Final).
		Int("in_progress", bd.InProgress).
		Int("not_started", bd.Scheduled).
		Int("postponed", bd.Postponed).
		Int("other", bd.Other).
		Int("included", bd.Included).
		Int("skipped", bd.Skipped).
		Bool("force", d.Force).
		Msg("Candidate games discovered")

	return candidates
}

// Breakdown returns the counts from the last ListCandidates call
func (d *Discovery) Breakdown() Breakdown {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.breakdown
}
