package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/ingest"

	"github.com/stretchr/testify/assert"
)

func feedServer(t *testing.T, schedule string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/schedule") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(schedule))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dryRunConfig(srv *httptest.Server) *config.Config {
	return &config.Config{
		FeedBaseURL:             srv.URL + "/gf",
		FeedScheduleURL:         srv.URL + "/schedule",
		FeedTimeout:             5 * time.Second,
		FeedConcurrency:         2,
		IngestMaxWorkers:        2,
		IngestMaxWindowDays:     2,
		IngestTerminationWindow: 5,
		IngestProgressEvery:     10,
		IngestFallbackDate:      "2025-03-27",
		IngestTimezone:          "UTC",
		RunStartDate:            "2025-05-01",
		DryRun:                  true,
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name  string
		stats ingest.RunStats
		want  int
	}{
		{"nothing to do", ingest.RunStats{}, 0},
		{"all succeeded", ingest.RunStats{Succeeded: 3}, 0},
		{"partial failure", ingest.RunStats{Succeeded: 2, Failed: 1}, 0},
		{"all failed", ingest.RunStats{Failed: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.stats))
		})
	}
}

func TestRun_InvalidWindow(t *testing.T) {
	cfg := &config.Config{RunEndDate: "2025-05-01"}
	assert.Equal(t, 2, run(context.Background(), cfg))
}

func TestRun_DryRunEmptySchedule(t *testing.T) {
	srv := feedServer(t, `{"dates": []}`)
	assert.Equal(t, 0, run(context.Background(), dryRunConfig(srv)))
}

func TestRun_AllGamesFailed(t *testing.T) {
	srv := feedServer(t, `{"dates": [{"date": "2025-05-01", "games": [{"gamePk": 8101, "officialDate": "2025-05-01"}]}]}`)
	assert.Equal(t, 1, run(context.Background(), dryRunConfig(srv)))
}
