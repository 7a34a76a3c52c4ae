package ingest

import (
	"context"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"

	"github.com/rs/zerolog/log"
)

// DefaultFallbackDate is used when no fully completed date is on record
var DefaultFallbackDate = time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)

// WindowPlanner derives the next processing window from stored game history
type WindowPlanner struct {
	reader   store.Reader
	fallback time.Time
	maxDays  int
	now      func() time.Time
}

// NewWindowPlanner creates a planner. A zero fallback uses DefaultFallbackDate
// and maxDays below 1 uses 2.
func NewWindowPlanner(reader store.Reader, fallback time.Time, maxDays int) *WindowPlanner {
	if fallback.IsZero() {
		fallback = DefaultFallbackDate
	}
	if maxDays < 1 {
		maxDays = 2
	}
	return &WindowPlanner{
		reader:   reader,
		fallback: models.DayStart(fallback),
		maxDays:  maxDays,
		now:      time.Now,
	}
}

// WithClock replaces the planner's notion of now
func (p *WindowPlanner) WithClock(now func() time.Time) *WindowPlanner {
	p.now = now
	return p
}

// ComputeWindow returns the window starting the day after the last complete
// date. It spans at most maxDays and ends no later than tomorrow. Storage
// errors are logged and the fallback date is used.
func (p *WindowPlanner) ComputeWindow(ctx context.Context) models.Window {
	last := p.lastCompleteDate(ctx)

	start := models.DayStart(last).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, p.maxDays-1)
	if limit := models.DayStart(p.now()).AddDate(0, 0, 1); end.After(limit) {
		end = limit
	}

	w := models.Window{Start: start, End: models.DayEnd(end)}
	log.Info().
		Str("last_complete", last.Format("2006-01-02")).
		Str("start", w.Start.Format("2006-01-02")).
		Str("end", w.End.Format("2006-01-02")).
		Int("days", w.Days()).
		Msg("Processing window planned")
	return w
}

func (p *WindowPlanner) lastCompleteDate(ctx context.Context) time.Time {
	counts, err := p.reader.GameDateCounts(ctx)
	if err != nil {
		log.Error().Err(err).
			Str("fallback", p.fallback.Format("2006-01-02")).
			Msg("Failed to read game dates, using fallback date")
		return p.fallback
	}

	for _, dc := range counts {
		if dc.Complete() {
			return dc.Date
		}
	}

	log.Warn().
		Str("fallback", p.fallback.Format("2006-01-02")).
		Msg("No fully completed date on record, using fallback date")
	return p.fallback
}
