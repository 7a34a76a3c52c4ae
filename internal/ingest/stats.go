package ingest

import (
	"sync"
	"time"
)

// RunStats summarizes one ingestion run
type RunStats struct {
	RunID       string
	WindowStart time.Time
	WindowEnd   time.Time

	TotalCandidates int
	Processed       int
	Succeeded       int
	Failed          int
	Skipped         int // Final games left out by discovery
	Cancelled       int // candidates never started after early termination

	TerminationReason TerminationReason
	Duration          time.Duration
}

// SuccessRate returns succeeded games as a percentage of processed games
func (s RunStats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Processed) * 100
}

// Rate returns processed games per second
func (s RunStats) Rate() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Processed) / s.Duration.Seconds()
}

// Terminated reports whether the run stopped early
func (s RunStats) Terminated() bool {
	return s.TerminationReason != NoTermination
}

// Tracker aggregates completions from concurrent workers. It keeps the
// counters and the trailing list of recent completions behind one mutex so
// the termination check never sees a torn update.
type Tracker struct {
	mu       sync.Mutex
	stats    RunStats
	trailing []GameState
	window   int
	started  time.Time
}

// NewTracker creates a tracker for total candidates keeping the last window completions
func NewTracker(total, window int) *Tracker {
	if window < 1 {
		window = 5
	}
	return &Tracker{
		stats:   RunStats{TotalCandidates: total},
		window:  window,
		started: time.Now(),
	}
}

// Record counts one completion and returns the processed total so far
func (t *Tracker) Record(ok bool, state GameState) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Processed++
	if ok {
		t.stats.Succeeded++
	} else {
		t.stats.Failed++
	}

	t.trailing = append(t.trailing, state)
	if len(t.trailing) > t.window {
		t.trailing = t.trailing[len(t.trailing)-t.window:]
	}
	return t.stats.Processed
}

// Trailing returns a copy of the most recent completions, or nil until the
// window has filled
func (t *Tracker) Trailing() []GameState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.trailing) < t.window {
		return nil
	}
	return append([]GameState(nil), t.trailing...)
}

// Cancel counts candidates that will never start
func (t *Tracker) Cancel(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Cancelled += n
}

// Terminate records the first early-stop reason. Later calls are ignored.
func (t *Tracker) Terminate(reason TerminationReason) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stats.TerminationReason != NoTermination {
		return false
	}
	t.stats.TerminationReason = reason
	return true
}

// Snapshot returns the current counters
func (t *Tracker) Snapshot() RunStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats
	s.Duration = time.Since(t.started)
	return s
}
