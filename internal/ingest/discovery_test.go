package ingest

import (
	"context"
	"errors"
	"testing"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGame(t *testing.T, s *memstore.Store, gamePK int64, date, status string) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertGame(ctx, &models.Game{GamePK: gamePK, OfficialDate: day(date), Status: status, HomeTeamID: 1, AwayTeamID: 2}))
	require.NoError(t, tx.Commit(ctx))
}

func discoveryWindow() models.Window {
	return models.Window{Start: day("2025-05-02"), End: models.DayEnd(day("2025-05-03"))}
}

func TestListCandidates(t *testing.T) {
	s := memstore.New()
	seedGame(t, s, 2, "2025-05-02", "Final")
	seedGame(t, s, 3, "2025-05-02", "In Progress")
	seedGame(t, s, 4, "2025-05-03", "Postponed")
	seedGame(t, s, 5, "2025-05-03", "Scheduled")

	feed := newFakeFeed()
	feed.refs = []models.EventRef{
		{GamePK: 5, Date: day("2025-05-03")},
		{GamePK: 4, Date: day("2025-05-03")},
		{GamePK: 1, Date: day("2025-05-02")},
		{GamePK: 2, Date: day("2025-05-02")},
		{GamePK: 3, Date: day("2025-05-02")},
		{GamePK: 4, Date: day("2025-05-03")},
	}

	d := NewDiscovery(feed, s)
	candidates := d.ListCandidates(context.Background(), discoveryWindow())

	var ids []int64
	for _, c := range candidates {
		ids = append(ids, c.GamePK)
	}
	assert.Equal(t, []int64{1, 3, 4, 5}, ids, "Final games are skipped and the rest ordered by date then id")

	bd := d.Breakdown()
	assert.Equal(t, 1, bd.Final)
	assert.Equal(t, 1, bd.InProgress)
	assert.Equal(t, 2, bd.Scheduled, "New games count as scheduled")
	assert.Equal(t, 1, bd.Postponed)
	assert.Equal(t, 4, bd.Included)
	assert.Equal(t, 1, bd.Skipped)
}

func TestListCandidates_Force(t *testing.T) {
	s := memstore.New()
	seedGame(t, s, 2, "2025-05-02", "Final")

	feed := newFakeFeed()
	feed.refs = []models.EventRef{{GamePK: 2, Date: day("2025-05-02")}}

	d := NewDiscovery(feed, s)
	d.Force = true
	candidates := d.ListCandidates(context.Background(), discoveryWindow())

	require.Len(t, candidates, 1)
	assert.Equal(t, 1, d.Breakdown().Final)
	assert.Zero(t, d.Breakdown().Skipped)
}

func TestListCandidates_Failures(t *testing.T) {
	t.Run("feed error", func(t *testing.T) {
		feed := newFakeFeed()
		feed.listErr = errors.New("503 Service Unavailable")

		d := NewDiscovery(feed, memstore.New())
		assert.Empty(t, d.ListCandidates(context.Background(), discoveryWindow()))
	})

	t.Run("storage error", func(t *testing.T) {
		s := memstore.New()
		s.SetFault("GetGame", errors.New("connection reset"))
		feed := newFakeFeed()
		feed.refs = []models.EventRef{{GamePK: 1, Date: day("2025-05-02")}}

		d := NewDiscovery(feed, s)
		assert.Empty(t, d.ListCandidates(context.Background(), discoveryWindow()))
		assert.Zero(t, d.Breakdown().Included)
	})
}
