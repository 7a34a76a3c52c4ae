package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Processor rebuilds a single game and reports whether it committed
type Processor interface {
	Process(ctx context.Context, ref models.EventRef) bool
}

// SchedulerConfig tunes the worker pool and early termination
type SchedulerConfig struct {
	MaxWorkers        int
	TerminationWindow int
	ProgressEvery     int
	Policy            TerminationPolicy
}

// Scheduler runs candidates through a Processor on a bounded pool and stops
// submitting work when the termination policy fires
type Scheduler struct {
	processor Processor
	reader    store.Reader
	cfg       SchedulerConfig
	now       func() time.Time
}

// NewScheduler creates a scheduler. Zero config values take defaults of
// 10 workers, a window of 5 and progress every 10 completions.
func NewScheduler(processor Processor, reader store.Reader, cfg SchedulerConfig) *Scheduler {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 10
	}
	if cfg.TerminationWindow < 1 {
		cfg.TerminationWindow = 5
	}
	if cfg.ProgressEvery < 1 {
		cfg.ProgressEvery = 10
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultTerminationPolicy
	}
	return &Scheduler{
		processor: processor,
		reader:    reader,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the scheduler's notion of now used by state checks
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

type completion struct {
	ref      models.EventRef
	ok       bool
	state    GameState
	duration time.Duration
}

// Run processes candidates with at most MaxWorkers in flight. Completions
// are handled in the order they finish. Once the policy fires no further
// candidate starts; games already in flight run to completion.
func (s *Scheduler) Run(ctx context.Context, candidates []models.EventRef) RunStats {
	tracker := NewTracker(len(candidates), s.cfg.TerminationWindow)
	if len(candidates) == 0 {
		return tracker.Snapshot()
	}

	// dispatchCtx only gates submission; workers run on ctx
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	sem := semaphore.NewWeighted(int64(s.cfg.MaxWorkers))
	results := make(chan completion, len(candidates))

	log.Info().
		Int("candidates", len(candidates)).
		Int("max_workers", s.cfg.MaxWorkers).
		Msg("Starting ingestion workers")

	go s.dispatch(ctx, dispatchCtx, sem, candidates, tracker, results)

	for c := range results {
		processed := tracker.Record(c.ok, c.state)
		s.logCompletion(c, processed, len(candidates))

		if processed%s.cfg.ProgressEvery == 0 {
			s.logProgress(tracker.Snapshot())
		}

		if window := tracker.Trailing(); window != nil {
			if reason := s.cfg.Policy(window); reason != NoTermination && tracker.Terminate(reason) {
				log.Warn().
					Str("reason", string(reason)).
					Int("processed", processed).
					Int("total", len(candidates)).
					Msg("Terminating run early")
				metrics.RecordTermination(string(reason))
				stopDispatch()
			}
		}

		// The slot frees only after the termination check so the next
		// candidate cannot start ahead of a stop decision
		sem.Release(1)
	}

	return tracker.Snapshot()
}

// dispatch submits candidates as worker slots free up and closes results
// once every started worker has reported. Slots are released by Run.
func (s *Scheduler) dispatch(ctx, dispatchCtx context.Context, sem *semaphore.Weighted, candidates []models.EventRef, tracker *Tracker, results chan<- completion) {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(results)
	}()

	for i, ref := range candidates {
		// Acquire may succeed on a done context when a slot is free
		if dispatchCtx.Err() != nil {
			tracker.Cancel(len(candidates) - i)
			return
		}
		if err := sem.Acquire(dispatchCtx, 1); err != nil {
			tracker.Cancel(len(candidates) - i)
			return
		}
		if dispatchCtx.Err() != nil {
			sem.Release(1)
			tracker.Cancel(len(candidates) - i)
			return
		}

		wg.Add(1)
		go func(ref models.EventRef) {
			defer wg.Done()
			results <- s.execute(ctx, ref)
		}(ref)
	}
}

// execute processes one game and reads back its stored state. A panic counts as
// a failure.
func (s *Scheduler) execute(ctx context.Context, ref models.EventRef) completion {
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	start := time.Now()
	ok := s.safeProcess(ctx, ref)
	duration := time.Since(start)

	result := "success"
	if !ok {
		result = "failed"
	}
	metrics.RecordGameProcessed(result, duration.Seconds())

	return completion{
		ref:      ref,
		ok:       ok,
		state:    s.inspect(ctx, ref),
		duration: duration,
	}
}

func (s *Scheduler) safeProcess(ctx context.Context, ref models.EventRef) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int64("game_pk", ref.GamePK).
				Str("panic", fmt.Sprint(r)).
				Msg("Game processing panicked")
			metrics.RecordError("scheduler", "panic")
			ok = false
		}
	}()
	return s.processor.Process(ctx, ref)
}

// inspect reads the game's state after processing. A game without a stored
// row keeps the candidate's date and an empty status.
func (s *Scheduler) inspect(ctx context.Context, ref models.EventRef) GameState {
	p := GameState{GamePK: ref.GamePK, Date: ref.Date}

	pitches, err := s.reader.CountPitches(ctx, ref.GamePK)
	if err != nil {
		p.Err = err
		log.Warn().Err(err).Int64("game_pk", ref.GamePK).Msg("Failed to read pitch count")
		return p
	}
	p.Pitches = pitches

	game, err := s.reader.GetGame(ctx, ref.GamePK)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		p.Err = err
		log.Warn().Err(err).Int64("game_pk", ref.GamePK).Msg("Failed to read game status")
		return p
	default:
		p.Status = game.Status
		p.Date = game.OfficialDate
	}

	p.Future = models.DayStart(p.Date).After(models.DayStart(s.now()))
	return p
}

func (s *Scheduler) logCompletion(c completion, processed, total int) {
	event := log.Info()
	if !c.ok {
		event = log.Warn()
	}
	event = event.
		Int64("game_pk", c.ref.GamePK).
		Str("date", c.ref.Date.Format("2006-01-02")).
		Bool("success", c.ok).
		Int("processed", processed).
		Int("total", total).
		Dur("duration", c.duration)
	if c.state.Err == nil {
		event = event.
			Str("status", c.state.Status).
			Str("data", dataLabel(c.state.Pitches)).
			Int("pitches", c.state.Pitches)
	}
	event.Msg("Game processed")
}

func (s *Scheduler) logProgress(stats RunStats) {
	pct := 0.0
	if stats.TotalCandidates > 0 {
		pct = float64(stats.Processed) / float64(stats.TotalCandidates) * 100
	}
	eta := time.Duration(0)
	if rate := stats.Rate(); rate > 0 {
		remaining := stats.TotalCandidates - stats.Processed
		eta = time.Duration(float64(remaining) / rate * float64(time.Second))
	}
	log.Info().
		Int("processed", stats.Processed).
		Int("total", stats.TotalCandidates).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Float64("percent", pct).
		Float64("games_per_sec", stats.Rate()).
		Dur("eta", eta).
		Msg("Ingestion progress")
}
