package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleBody = `{
  "dates": [
    {"date": "2025-05-02", "games": [
      {"gamePk": 777001, "officialDate": "2025-05-02"},
      {"gamePk": 777002, "officialDate": "2025-05-02"}
    ]},
    {"date": "2025-05-03", "games": [
      {"gamePk": 777003, "officialDate": ""},
      {"gamePk": 0}
    ]}
  ]
}`

const finalGameBody = `{
  "scoreboard": {"gamePk": 777001, "status": {"detailedState": "Final"}},
  "gameDate": "5/2/2025",
  "team_home_id": 147,
  "team_away_id": 111
}`

const liveGameBody = `{
  "scoreboard": {"gamePk": 777002, "status": {"detailedState": "In Progress"}},
  "gameDate": "5/2/2025"
}`

type memCache struct {
	mu   sync.Mutex
	data map[int64][]byte
	gets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[int64][]byte)}
}

func (m *memCache) GetPayload(ctx context.Context, gamePK int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.data[gamePK], nil
}

func (m *memCache) SetPayload(ctx context.Context, gamePK int64, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[gamePK] = raw
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:     srv.URL + "/gf",
		ScheduleURL: srv.URL + "/schedule",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		Concurrency: 2,
	})
	c.retryDelay = time.Millisecond
	return c
}

func TestListScheduledEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		assert.Equal(t, "2025-05-02", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2025-05-03", r.URL.Query().Get("endDate"))
		w.Write([]byte(scheduleBody))
	})

	start := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	refs, err := c.ListScheduledEvents(context.Background(), start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, int64(777001), refs[0].GamePK)
	assert.Equal(t, start, refs[0].Date)
	assert.Equal(t, int64(777003), refs[2].GamePK)
	assert.Equal(t, "2025-05-03", refs[2].Date.Format("2006-01-02"), "Falls back to the schedule date")
}

func TestFetchEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gf", r.URL.Path)
		assert.Equal(t, "777001", r.URL.Query().Get("game_pk"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(finalGameBody))
	})

	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	p, err := c.FetchEvent(context.Background(), date, 777001)
	require.NoError(t, err)

	assert.Equal(t, int64(777001), p.GamePK())
	assert.Equal(t, "Final", p.Scoreboard.Status.DetailedState)
	assert.Equal(t, date, p.RequestedDate)
	assert.Equal(t, 147, p.TeamID("home"))
}

func TestFetchEvent_RetriesTransientStatus(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(finalGameBody))
	})

	_, err := c.FetchEvent(context.Background(), time.Now(), 777001)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchEvent_NoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	})

	_, err := c.FetchEvent(context.Background(), time.Now(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchEvent_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchEvent(context.Background(), time.Now(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchEvent_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scoreboard": [`))
	})

	_, err := c.FetchEvent(context.Background(), time.Now(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestFetchEvent_CachesOnlyFinalGames(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("game_pk") == "777001" {
			w.Write([]byte(finalGameBody))
			return
		}
		w.Write([]byte(liveGameBody))
	})
	cache := newMemCache()
	c.WithCache(cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.FetchEvent(ctx, time.Now(), 777001)
		require.NoError(t, err)
		_, err = c.FetchEvent(ctx, time.Now(), 777002)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "Second fetch of the final game is served from cache")
	assert.Contains(t, cache.data, int64(777001))
	assert.NotContains(t, cache.data, int64(777002))
}

func TestFetchEvent_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.retryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchEvent(ctx, time.Now(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
