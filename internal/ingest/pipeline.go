package ingest

import (
	"context"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Pipeline wires planning, discovery and scheduling into one run
type Pipeline struct {
	planner   *WindowPlanner
	discovery *Discovery
	scheduler *Scheduler
}

// RunOptions overrides the planned behavior of a single run
type RunOptions struct {
	// Window replaces the planned window when set
	Window *models.Window
}

// NewPipeline creates a Pipeline
func NewPipeline(planner *WindowPlanner, discovery *Discovery, scheduler *Scheduler) *Pipeline {
	return &Pipeline{planner: planner, discovery: discovery, scheduler: scheduler}
}

// RunOnce plans a window, discovers its candidates and processes them
func (p *Pipeline) RunOnce(ctx context.Context, opts RunOptions) RunStats {
	start := time.Now()
	runID := uuid.NewString()

	var w models.Window
	if opts.Window != nil {
		w = models.Window{Start: models.DayStart(opts.Window.Start), End: models.DayEnd(opts.Window.End)}
	} else {
		w = p.planner.ComputeWindow(ctx)
	}

	log.Info().
		Str("run_id", runID).
		Str("start", w.Start.Format("2006-01-02")).
		Str("end", w.End.Format("2006-01-02")).
		Msg("Ingestion run starting")

	var stats RunStats
	if w.Days() == 0 {
		log.Info().Str("run_id", runID).Msg("Processing window is empty, nothing to do")
	} else {
		candidates := p.discovery.ListCandidates(ctx, w)
		metrics.CandidatesDiscovered.Set(float64(len(candidates)))
		stats = p.scheduler.Run(ctx, candidates)
		stats.Skipped = p.discovery.Breakdown().Skipped
	}

	stats.RunID = runID
	stats.WindowStart = w.Start
	stats.WindowEnd = w.End
	stats.Duration = time.Since(start)

	status := "success"
	if ctx.Err() != nil {
		status = "cancelled"
	}
	metrics.RecordRun(status, stats.Duration.Seconds())

	logSummary(stats)
	return stats
}

func logSummary(stats RunStats) {
	log.Info().
		Str("run_id", stats.RunID).
		Int("candidates", stats.TotalCandidates).
		Int("processed", stats.Processed).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Int("cancelled", stats.Cancelled).
		Float64("success_rate", stats.SuccessRate()).
		Float64("games_per_sec", stats.Rate()).
		Str("termination_reason", string(stats.TerminationReason)).
		Dur("duration", stats.Duration).
		Msg("Ingestion run complete")

	switch {
	case stats.Terminated():
		log.Info().
			Str("run_id", stats.RunID).
			Msg("Run stopped early, the next run re-plans from the last complete date")
	case stats.Failed > 0:
		log.Info().
			Str("run_id", stats.RunID).
			Int("failed", stats.Failed).
			Msg("Failed games stay incomplete and are retried by the next run")
	case stats.TotalCandidates == 0:
		log.Info().
			Str("run_id", stats.RunID).
			Msg("No candidates in window, the next run advances once the window's games are final")
	}
}
