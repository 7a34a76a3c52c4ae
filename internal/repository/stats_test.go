//go:build integration

package repository

import (
	"database/sql"
	"testing"

	"mlbstats/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_UpsertTeamSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer db.Pool.Exec(ctx, `DELETE FROM team_season_stats WHERE team_id = 9301`)

	stats := &models.TeamSeasonStats{
		TeamID:       9301,
		Season:       2025,
		TeamName:     "Test Sox",
		Wins:         10,
		Losses:       5,
		GamesPlayed:  15,
		WinningPct:   sql.NullFloat64{Float64: 0.667, Valid: true},
		DivisionRank: sql.NullInt32{Int32: 1, Valid: true},
		LastGamePK:   1001,
	}

	err := db.Stats.UpsertTeamSeason(ctx, stats)
	require.NoError(t, err, "Should upsert season stats")

	retrieved, err := db.Stats.GetTeamSeason(ctx, 9301, 2025)
	require.NoError(t, err)
	assert.Equal(t, 10, retrieved.Wins)
	assert.Equal(t, 0.667, retrieved.WinningPct.Float64)
	assert.Equal(t, int64(1001), retrieved.LastGamePK)

	// Update stats (simulate a later game)
	stats.Wins = 11
	stats.LastGamePK = 1002

	err = db.Stats.UpsertTeamSeason(ctx, stats)
	require.NoError(t, err, "Should update season stats")

	updated, err := db.Stats.GetTeamSeason(ctx, 9301, 2025)
	require.NoError(t, err)
	assert.Equal(t, 11, updated.Wins)
	assert.Equal(t, int64(1002), updated.LastGamePK)
}

func TestStatsRepository_UpsertPlayerSeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer db.Pool.Exec(ctx, `DELETE FROM player_season_stats WHERE player_id = 9_300_001`)

	stats := &models.PlayerSeasonStats{
		PlayerID:        9_300_001,
		Season:          2025,
		TeamID:          9301,
		PlayerName:      "Test Batter",
		PrimaryPosition: "Outfielder",
		AtBats:          sql.NullInt32{Int32: 40, Valid: true},
		Hits:            sql.NullInt32{Int32: 12, Valid: true},
		BattingAvg:      sql.NullFloat64{Float64: 0.3, Valid: true},
		LastGamePK:      1001,
	}
	require.NoError(t, db.Stats.UpsertPlayerSeason(ctx, stats))

	retrieved, err := db.Stats.GetPlayerSeason(ctx, 9_300_001, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(12), retrieved.Hits.Int32)
	assert.False(t, retrieved.ERA.Valid, "Batters have no ERA")
}
