package ingest

import (
	"time"

	"mlbstats/ingestion/internal/models"
)

// TerminationReason explains why a run stopped early. Empty means it did not.
type TerminationReason string

const (
	NoTermination      TerminationReason = ""
	ReasonNoData       TerminationReason = "NO_DATA"
	ReasonFutureEvents TerminationReason = "FUTURE_EVENTS"
	ReasonAllScheduled TerminationReason = "ALL_SCHEDULED"
)

// GameState is the stored state of a game read after its processing finished
type GameState struct {
	GamePK  int64
	Date    time.Time
	Status  string
	Pitches int
	Future  bool
	Err     error
}

// TerminationPolicy inspects the most recent completions, oldest first, and
// decides whether the run should stop submitting work
type TerminationPolicy func(window []GameState) TerminationReason

// DefaultTerminationPolicy stops when every game in the window has no pitch
// data, when a majority of them are dated after today, or when none of them
// has started. A window containing a failed state read never terminates.
func DefaultTerminationPolicy(window []GameState) TerminationReason {
	if len(window) == 0 {
		return NoTermination
	}

	noData, future, notStarted := 0, 0, 0
	for _, p := range window {
		if p.Err != nil {
			return NoTermination
		}
		if p.Pitches == 0 {
			noData++
		}
		if p.Future {
			future++
		}
		if models.IsNotStartedStatus(p.Status) {
			notStarted++
		}
	}

	switch {
	case noData == len(window):
		return ReasonNoData
	case future >= len(window)/2+1:
		return ReasonFutureEvents
	case notStarted == len(window):
		return ReasonAllScheduled
	}
	return NoTermination
}

// dataLabel summarizes a game's pitch coverage for the completion log
func dataLabel(pitches int) string {
	switch {
	case pitches == 0:
		return "NO_DATA"
	case pitches < 50:
		return "PARTIAL_DATA"
	default:
		return "FULL_DATA"
	}
}
