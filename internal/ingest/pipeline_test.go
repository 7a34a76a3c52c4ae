package ingest

import (
	"context"
	"testing"
	"time"

	"mlbstats/ingestion/internal/loaders"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(s *memstore.Store, feed *fakeFeed, today string) *Pipeline {
	planner := NewWindowPlanner(s, time.Time{}, 2).WithClock(clock(today))
	discovery := NewDiscovery(feed, s)
	orchestrator := NewOrchestrator(feed, s, loaders.New())
	scheduler := NewScheduler(orchestrator, s, SchedulerConfig{MaxWorkers: 3}).WithClock(clock(today))
	return NewPipeline(planner, discovery, scheduler)
}

func TestRunOnce_ProcessesPlannedWindow(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedGame(t, s, 1, "2025-05-01", "Final")

	feed := newFakeFeed()
	feed.add(testPayload(11, "2025-05-02", "Final", 10, 20, 80, 5))
	feed.add(testPayload(12, "2025-05-02", "Final", 30, 40, 80, 5))
	feed.add(testPayload(13, "2025-05-03", "Final", 10, 30, 80, 6))
	// Outside the two-day window
	feed.add(testPayload(14, "2025-05-04", "Final", 20, 40, 80, 6))

	stats := newTestPipeline(s, feed, "2025-05-10").RunOnce(ctx, RunOptions{})

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, day("2025-05-02"), stats.WindowStart)
	assert.Equal(t, 3, stats.TotalCandidates)
	assert.Equal(t, 3, stats.Succeeded)
	assert.Equal(t, NoTermination, stats.TerminationReason)

	_, err := s.GetGame(ctx, 14)
	assert.Error(t, err)

	// The next run starts after the newly completed dates and skips nothing
	stats = newTestPipeline(s, feed, "2025-05-10").RunOnce(ctx, RunOptions{})
	assert.Equal(t, day("2025-05-04"), stats.WindowStart)
	assert.Equal(t, 1, stats.Succeeded)
}

func TestRunOnce_ExplicitWindowSkipsFinalGames(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	feed.add(testPayload(21, "2025-06-01", "Final", 10, 20, 80, 5))
	feed.add(testPayload(22, "2025-06-01", "Final", 30, 40, 80, 5))

	p := newTestPipeline(s, feed, "2025-06-05")
	w := &models.Window{Start: day("2025-06-01"), End: day("2025-06-01")}

	stats := p.RunOnce(ctx, RunOptions{Window: w})
	require.Equal(t, 2, stats.Succeeded)

	stats = p.RunOnce(ctx, RunOptions{Window: w})
	assert.Zero(t, stats.TotalCandidates)
	assert.Equal(t, 2, stats.Skipped, "Final games are not reprocessed")
}

func TestRunOnce_TerminatesOnUnplayedGames(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	for i := 0; i < 12; i++ {
		feed.add(testPayload(int64(300+i), "2025-07-01", "Scheduled", 10+i, 50+i, 0, 0))
	}

	p := newTestPipeline(s, feed, "2025-06-30")
	stats := p.RunOnce(ctx, RunOptions{Window: &models.Window{Start: day("2025-07-01"), End: day("2025-07-01")}})

	assert.Equal(t, ReasonNoData, stats.TerminationReason)
	assert.Less(t, stats.Processed, 12)
	assert.Equal(t, 12, stats.Processed+stats.Cancelled)
}

func TestRunOnce_EmptyWindow(t *testing.T) {
	s := memstore.New()
	feed := newFakeFeed()
	p := newTestPipeline(s, feed, "2025-06-30")

	stats := p.RunOnce(context.Background(), RunOptions{Window: &models.Window{Start: day("2025-07-02"), End: day("2025-07-01")}})

	assert.Zero(t, stats.TotalCandidates)
	assert.NotEmpty(t, stats.RunID)
}
