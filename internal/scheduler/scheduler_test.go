package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mlbstats/ingestion/internal/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   int32
	release chan struct{}
	started chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{release: make(chan struct{}), started: make(chan struct{}, 10)}
}

func (r *fakeRunner) RunOnce(ctx context.Context, opts ingest.RunOptions) ingest.RunStats {
	atomic.AddInt32(&r.calls, 1)
	r.started <- struct{}{}
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return ingest.RunStats{RunID: "test"}
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	released []string
}

func (l *fakeLocker) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token-1", true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released = append(l.released, token)
	return nil
}

func waitStarted(t *testing.T, r *fakeRunner) {
	t.Helper()
	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not start")
	}
}

func TestStart_RunsOnStartAndReleasesLock(t *testing.T) {
	runner := newFakeRunner()
	locker := &fakeLocker{}
	s := NewScheduler(Config{Cron: "@every 1h", RunOnStart: true, LockTTL: time.Minute}, runner, locker)

	require.NoError(t, s.Start(context.Background()))
	waitStarted(t, runner)
	close(runner.release)
	s.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
	assert.Equal(t, []string{"token-1"}, locker.released)
}

func TestStart_InvalidCron(t *testing.T) {
	s := NewScheduler(Config{Cron: "whenever"}, newFakeRunner(), nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestRunJob_SkipsWhenLockHeldElsewhere(t *testing.T) {
	runner := newFakeRunner()
	locker := &fakeLocker{held: true}
	s := NewScheduler(Config{Cron: "@every 1h"}, runner, locker)

	s.runJob(context.Background())

	assert.Zero(t, atomic.LoadInt32(&runner.calls))
	assert.Empty(t, locker.released)
}

func TestRunJob_RunsWithoutLockWhenRedisDown(t *testing.T) {
	runner := newFakeRunner()
	close(runner.release)
	locker := &fakeLocker{err: errors.New("connection refused")}
	s := NewScheduler(Config{Cron: "@every 1h"}, runner, locker)

	s.runJob(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
	assert.Empty(t, locker.released)
}

func TestJob_SkipsOverlappingRuns(t *testing.T) {
	runner := newFakeRunner()
	s := NewScheduler(Config{Cron: "@every 1h"}, runner, nil)
	require.NoError(t, s.Start(context.Background()))

	go s.job.Run()
	waitStarted(t, runner)

	// Returns immediately while the first run is still going
	s.job.Run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))

	close(runner.release)
	s.Stop()
}

func TestRunJob_CancelledContext(t *testing.T) {
	runner := newFakeRunner()
	s := NewScheduler(Config{Cron: "@every 1h"}, runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runJob(ctx)

	assert.Zero(t, atomic.LoadInt32(&runner.calls))
}
