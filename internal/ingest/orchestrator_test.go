package ingest

import (
	"context"
	"errors"
	"testing"

	"mlbstats/ingestion/internal/loaders"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/store"
	"mlbstats/ingestion/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panickingLoader fails the boxscore stage with a panic
type panickingLoader struct {
	Loader
}

func (panickingLoader) LoadBoxscore(ctx context.Context, tx store.Tx, p *models.GamePayload, gamePK int64) (int, error) {
	panic("unexpected boxscore shape")
}

func ref(p *models.GamePayload) models.EventRef {
	return models.EventRef{GamePK: p.GamePK(), Date: p.OfficialDate()}
}

func TestProcess_Success(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5001, "2025-05-02", "Final", 10, 20, 60, 7)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))
	require.True(t, ok)

	game, err := s.GetGame(ctx, 5001)
	require.NoError(t, err)
	assert.Equal(t, "Final", game.Status)
	assert.Len(t, s.Pitches(5001), 60)
	assert.Len(t, s.BoxScores(5001), 3)
	assert.Len(t, s.WPA(5001), 4)
	assert.NotNil(t, s.Player(1001))
	require.NotNil(t, s.TeamSeasonStats(10, 2025))
	assert.Equal(t, 7, s.TeamSeasonStats(10, 2025).Wins)
}

func TestProcess_FetchFailures(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	feed.fetchErr[5002] = errors.New("404 Not Found")
	o := NewOrchestrator(feed, s, loaders.New())

	assert.False(t, o.Process(ctx, models.EventRef{GamePK: 5002, Date: day("2025-05-02")}), "Fetch error")
	assert.False(t, o.Process(ctx, models.EventRef{GamePK: 5003, Date: day("2025-05-02")}), "No payload")
	assert.Empty(t, s.Games())
	assert.Equal(t, 1, feed.fetches[5002], "Failed fetches are not retried")
}

func TestProcess_MetadataFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5004, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)
	feed.payloads[5004].Scoreboard.GamePK = 0

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, models.EventRef{GamePK: 5004, Date: day("2025-05-02")})

	assert.False(t, ok)
	_, err := s.GetGame(ctx, 5004)
	assert.True(t, errors.Is(err, store.ErrNotFound), "No game row after a metadata failure")
	assert.Empty(t, s.Pitches(0))
}

func TestProcess_RecoverableStageFailure(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	s.SetFault("EnsurePlayer", errors.New("players table locked"))
	feed := newFakeFeed()
	p := testPayload(5005, "2025-05-02", "Final", 10, 20, 30, 7)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))

	assert.True(t, ok, "Participant failure does not fail the game")
	_, err := s.GetGame(ctx, 5005)
	assert.NoError(t, err)
	assert.Nil(t, s.Player(1001))
	assert.Len(t, s.Pitches(5005), 30, "Later stages still run")
	assert.Len(t, s.BoxScores(5005), 3)
}

func TestProcess_StageFailureRollsBackOnlyThatStage(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	s.SetFault("InsertBattedBall", errors.New("constraint violation"))
	feed := newFakeFeed()
	p := testPayload(5006, "2025-05-02", "Final", 10, 20, 3, 7)
	p.AwayPitches[2].Call = "X"
	p.AwayPitches[2].HcX = models.Float(120)
	p.AwayPitches[2].HcY = models.Float(150)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))

	assert.True(t, ok)
	assert.Empty(t, s.Pitches(5006), "Pitches written before the failure are rolled back with their stage")
	assert.Len(t, s.BoxScores(5006), 3)
}

func TestProcess_CommitFailure(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	s.SetFault("Commit", errors.New("serialization failure"))
	feed := newFakeFeed()
	p := testPayload(5007, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))

	assert.False(t, ok)
	assert.Empty(t, s.Games())
	assert.Empty(t, s.Pitches(5007))
}

func TestProcess_SavepointUnavailable(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	s.SetFault("Begin", errors.New("savepoints disabled"))
	feed := newFakeFeed()
	p := testPayload(5008, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))

	assert.True(t, ok, "Only the core record is mandatory")
	_, err := s.GetGame(ctx, 5008)
	assert.NoError(t, err)
	assert.Empty(t, s.Pitches(5008))
}

func TestProcess_IdempotentRebuild(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5009, "2025-05-02", "Final", 10, 20, 40, 7)
	feed.add(p)
	o := NewOrchestrator(feed, s, loaders.New())

	require.True(t, o.Process(ctx, ref(p)))
	firstBoxes := s.BoxScores(5009)
	firstPitches := s.Pitches(5009)

	require.True(t, o.Process(ctx, ref(p)))

	assert.Len(t, s.Games(), 1)
	assert.Len(t, s.BoxScores(5009), len(firstBoxes))
	assert.Len(t, s.Pitches(5009), len(firstPitches))
	assert.Len(t, s.LineScores(5009), len(p.ToLineScores()))
	assert.Len(t, s.WPA(5009), 4)
}

func TestProcess_WPAFailureIsRecoverable(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	s.SetFault("InsertWPA", errors.New("game_wpa missing"))
	feed := newFakeFeed()
	p := testPayload(5011, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)

	ok := NewOrchestrator(feed, s, loaders.New()).Process(ctx, ref(p))

	assert.True(t, ok)
	assert.Empty(t, s.WPA(5011))
	assert.Len(t, s.Pitches(5011), 10)
	require.NotNil(t, s.TeamSeasonStats(10, 2025), "Season stage still runs after a WPA failure")
}

func TestProcess_PurgeClearsStaleWPA(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5012, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)
	o := NewOrchestrator(feed, s, loaders.New())
	require.True(t, o.Process(ctx, ref(p)))
	require.Len(t, s.WPA(5012), 4)

	// A corrected feed drops the last two plate appearances
	corrected := testPayload(5012, "2025-05-02", "Final", 10, 20, 10, 7)
	corrected.Scoreboard.Stats.WPA.GameWPA = corrected.Scoreboard.Stats.WPA.GameWPA[:2]
	feed.add(corrected)
	require.True(t, o.Process(ctx, ref(corrected)))

	assert.Len(t, s.WPA(5012), 2)
}

func TestProcess_PurgeFailureKeepsPitchesUnique(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5010, "2025-05-02", "In Progress", 10, 20, 25, 7)
	feed.add(p)
	o := NewOrchestrator(feed, s, loaders.New())

	require.True(t, o.Process(ctx, ref(p)))
	before := s.Pitches(5010)
	require.Len(t, before, 25)

	// The game progresses while purge is failing
	s.SetFault("PurgeGame", errors.New("lock timeout"))
	progressed := testPayload(5010, "2025-05-02", "Final", 10, 20, 40, 7)
	feed.add(progressed)

	require.True(t, o.Process(ctx, ref(progressed)), "Purge failure does not fail the game")

	after := s.Pitches(5010)
	assert.Len(t, after, 40, "Existing pitches are kept and new ones appended")
	ids := make(map[string]bool)
	for _, pitch := range after {
		assert.False(t, ids[pitch.PitchID], "Duplicate pitch %s", pitch.PitchID)
		ids[pitch.PitchID] = true
	}

	game, err := s.GetGame(ctx, 5010)
	require.NoError(t, err)
	assert.Equal(t, "Final", game.Status, "Game row is rebuilt over the stale one")
}

func TestProcess_SeasonStatsOnlyFromLatestFinal(t *testing.T) {
	ctx := context.Background()

	earlier := testPayload(5020, "2025-05-02", "Final", 10, 20, 10, 7)
	later := testPayload(5021, "2025-05-03", "Final", 20, 10, 10, 8)

	for _, order := range [][]*models.GamePayload{{earlier, later}, {later, earlier}} {
		s := memstore.New()
		feed := newFakeFeed()
		feed.add(earlier)
		feed.add(later)
		o := NewOrchestrator(feed, s, loaders.New())

		for _, p := range order {
			require.True(t, o.Process(ctx, ref(p)))
		}

		for _, teamID := range []int{10, 20} {
			stats := s.TeamSeasonStats(teamID, 2025)
			require.NotNil(t, stats)
			assert.Equal(t, 8, stats.Wins, "Team %d record comes from the later game", teamID)
			assert.Equal(t, int64(5021), stats.LastGamePK)
		}
		assert.Equal(t, int32(8), s.PlayerSeasonStats(1001, 2025).Hits.Int32)
	}
}

func TestProcess_OlderFinalWritesSeasonUntilNewerCommits(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()

	older := testPayload(5030, "2025-05-02", "Final", 10, 20, 10, 7)
	newer := testPayload(5031, "2025-05-03", "Final", 10, 20, 10, 8)
	feed.add(older)
	feed.add(newer)
	o := NewOrchestrator(feed, s, loaders.New())

	// The newer game is not stored yet, so the older one passes the recency check
	require.True(t, o.Process(ctx, ref(older)))
	team := s.TeamSeasonStats(10, 2025)
	require.NotNil(t, team)
	assert.Equal(t, int64(5030), team.LastGamePK)

	require.True(t, o.Process(ctx, ref(newer)))
	team = s.TeamSeasonStats(10, 2025)
	require.NotNil(t, team)
	assert.Equal(t, int64(5031), team.LastGamePK, "The newer game overwrites the row")
	assert.Equal(t, 8, team.Wins)
}

func TestProcess_SeasonStatsConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()

	// Same team on consecutive days, processed in parallel
	var candidates []models.EventRef
	for i := 0; i < 6; i++ {
		date := day("2025-05-01").AddDate(0, 0, i).Format("2006-01-02")
		p := testPayload(int64(5100+i), date, "Final", 10, 30+i, 20, i)
		feed.add(p)
		candidates = append(candidates, ref(p))
	}

	o := NewOrchestrator(feed, s, loaders.New())
	stats := NewScheduler(o, s, SchedulerConfig{MaxWorkers: 6, Policy: neverTerminate}).Run(ctx, candidates)
	require.Equal(t, 6, stats.Succeeded)

	team := s.TeamSeasonStats(10, 2025)
	require.NotNil(t, team)
	assert.Equal(t, int64(5105), team.LastGamePK, "Only the latest game may own the team's season row")
	assert.Equal(t, 5, team.Wins)
}

func TestProcess_PanicIsContainedByScheduler(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	feed := newFakeFeed()
	p := testPayload(5200, "2025-05-02", "Final", 10, 20, 10, 7)
	feed.add(p)

	o := NewOrchestrator(feed, s, panickingLoader{Loader: loaders.New()})
	stats := NewScheduler(o, s, SchedulerConfig{MaxWorkers: 1}).Run(ctx, []models.EventRef{ref(p)})

	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, s.Games(), "The open transaction is rolled back")

	// Team locks were released by the rollback
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.LockTeam(ctx, 10))
	require.NoError(t, tx.Rollback(ctx))
}
