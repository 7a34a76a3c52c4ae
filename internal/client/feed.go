package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the feed has no document for a game
var ErrNotFound = errors.New("feed: not found")

// PayloadCache stores raw game documents. GetPayload returns nil, nil on a miss.
type PayloadCache interface {
	GetPayload(ctx context.Context, gamePK int64) ([]byte, error)
	SetPayload(ctx context.Context, gamePK int64, raw []byte) error
}

// Config configures the feed client
type Config struct {
	BaseURL     string
	ScheduleURL string
	Timeout     time.Duration
	MaxRetries  int
	Concurrency int
}

// Client is the game feed API client
type Client struct {
	baseURL     string
	scheduleURL string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
	cache       PayloadCache
}

// NewClient creates a new feed client
func NewClient(cfg Config) *Client {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 20
	}
	rateLimiter := make(chan struct{}, concurrency)
	for i := 0; i < concurrency; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		scheduleURL: cfg.ScheduleURL,
		rateLimiter: rateLimiter,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: concurrency,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithCache stores Final game documents in cache and serves them from it
func (c *Client) WithCache(cache PayloadCache) *Client {
	c.cache = cache
	return c
}

// retryableError marks responses worth another attempt
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint, url string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		body, err := c.do(ctx, url, params)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordAPICall(endpoint, status, time.Since(start).Seconds())

		if err == nil {
			return body, nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
		if attempt < c.maxRetries {
			log.Warn().
				Err(err).
				Str("url", url).
				Int("attempt", attempt+1).
				Msg("Received retryable error, will retry")
		}
	}

	return nil, lastErr
}

// do performs a single attempt while holding a rate limiter slot
func (c *Client) do(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mlbstats-ingestion/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Retry on network errors
		return nil, &retryableError{fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{fmt.Errorf("failed to read response body: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, &retryableError{fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, truncate(body))}

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.String())

	default:
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body))
	}
}

type scheduleResponse struct {
	Dates []struct {
		Date  string `json:"date"`
		Games []struct {
			GamePK       int64  `json:"gamePk"`
			OfficialDate string `json:"officialDate"`
		} `json:"games"`
	} `json:"dates"`
}

// ListScheduledEvents returns every game the schedule lists between start and end
func (c *Client) ListScheduledEvents(ctx context.Context, start, end time.Time) ([]models.EventRef, error) {
	body, err := c.get(ctx, "schedule", c.scheduleURL, map[string]string{
		"sportId":   "1",
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	var refs []models.EventRef
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			if g.GamePK == 0 {
				continue
			}
			date, err := time.Parse("2006-01-02", firstNonEmpty(g.OfficialDate, d.Date))
			if err != nil {
				log.Warn().Int64("game_pk", g.GamePK).Str("date", d.Date).Msg("Skipping schedule entry with invalid date")
				continue
			}
			refs = append(refs, models.EventRef{GamePK: g.GamePK, Date: date})
		}
	}

	log.Debug().
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("games", len(refs)).
		Msg("Fetched schedule")
	return refs, nil
}

// FetchEvent returns the decoded game document. Documents of Final games
// are cached when a cache is configured.
func (c *Client) FetchEvent(ctx context.Context, date time.Time, gamePK int64) (*models.GamePayload, error) {
	if c.cache != nil {
		raw, err := c.cache.GetPayload(ctx, gamePK)
		if err != nil {
			log.Warn().Err(err).Int64("game_pk", gamePK).Msg("Payload cache read failed")
		}
		if raw != nil {
			if p, err := decodePayload(raw, date); err == nil {
				return p, nil
			}
		}
	}

	body, err := c.get(ctx, "game", c.baseURL, map[string]string{"game_pk": strconv.FormatInt(gamePK, 10)})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game %d: %w", gamePK, err)
	}

	p, err := decodePayload(body, date)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game %d: %w", gamePK, err)
	}

	if c.cache != nil && models.IsFinalStatus(p.Scoreboard.Status.DetailedState) {
		if err := c.cache.SetPayload(ctx, gamePK, body); err != nil {
			log.Warn().Err(err).Int64("game_pk", gamePK).Msg("Payload cache write failed")
		}
	}
	return p, nil
}

func decodePayload(raw []byte, date time.Time) (*models.GamePayload, error) {
	var p models.GamePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	p.RequestedDate = date
	return &p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
