package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mlbstats/ingestion/internal/ingest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const runLockName = "ingest-run"

// Runner executes one ingestion run
type Runner interface {
	RunOnce(ctx context.Context, opts ingest.RunOptions) ingest.RunStats
}

// Locker provides a lock shared by all worker replicas
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// Config configures the run schedule
type Config struct {
	Cron       string
	RunOnStart bool
	LockTTL    time.Duration
}

// Scheduler triggers ingestion runs on a cron schedule.
// Overlapping runs are skipped within a process, and the run lock
// keeps replicas from running at the same time.
type Scheduler struct {
	cfg    Config
	runner Runner
	locker Locker
	cron   *cron.Cron
	job    cron.Job
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler instance. locker may be nil.
func NewScheduler(cfg Config, runner Runner, locker Locker) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		locker: locker,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
	}
}

// Start schedules the ingestion job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	s.job = cron.NewChain(cron.SkipIfStillRunning(cronLogger{})).Then(cron.FuncJob(func() {
		s.runJob(ctx)
	}))

	if _, err := s.cron.AddJob(s.cfg.Cron, s.job); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.Cron).
		Bool("run_on_start", s.cfg.RunOnStart).
		Msg("Ingestion scheduled")

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.job.Run()
		}()
	}

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	<-s.cron.Stop().Done()
	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}

// runJob performs one run under the run lock
func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if s.locker != nil {
		token, ok, err := s.locker.AcquireLock(ctx, runLockName, s.cfg.LockTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Run lock unavailable - continuing without it")
		case !ok:
			log.Info().Msg("Another replica holds the run lock, skipping this run")
			return
		default:
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.locker.ReleaseLock(releaseCtx, runLockName, token); err != nil {
					log.Warn().Err(err).Msg("Failed to release run lock")
				}
			}()
		}
	}

	stats := s.runner.RunOnce(ctx, ingest.RunOptions{})
	log.Info().
		Str("run_id", stats.RunID).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Scheduled ingestion run finished")
}

// cronLogger routes cron's internal logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
