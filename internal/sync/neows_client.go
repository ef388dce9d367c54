// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/metrics"
	"github.com/tomtom215/neowatch/internal/models"
)

const (
	// feedPath is the NeoWs feed endpoint relative to NASA_BASE_URL.
	feedPath = "/neo/rest/v1/feed"

	// feedEndpoint labels upstream metrics.
	feedEndpoint = "feed"

	// maxErrorBodySize limits how much of an error response is kept.
	maxErrorBodySize = 64 * 1024

	// maxRetryAfter caps a server-supplied Retry-After.
	maxRetryAfter = 60 * time.Second
)

// FeedFetcher returns the NeoWs feed for an inclusive date window.
// NeoWsClient and CircuitBreakerClient implement it; tests use fakes.
type FeedFetcher interface {
	Feed(ctx context.Context, r models.DateRange) (*models.NeoWsFeed, error)
}

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// NeoWsClient talks to the NASA NeoWs feed endpoint.
//
// Outbound calls share one token bucket so concurrent fills cannot exceed
// NASA_REQUESTS_PER_SECOND. HTTP 429 and 502/503/504 are retried with
// exponential backoff (base, 2*base, 4*base, ...) up to maxRetries times; a
// Retry-After header replaces the computed delay. Windows longer than
// maxWindowDays are split into consecutive chunks and the chunk feeds are
// merged. Any failed chunk fails the whole call.
//
// Safe for concurrent use.
type NeoWsClient struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	requestTimeout time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	maxWindowDays  int
}

// NewNeoWsClient builds a client from the NASA section of the configuration.
func NewNeoWsClient(cfg *config.NASAConfig) *NeoWsClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	window := cfg.MaxWindowDays
	if window <= 0 {
		window = 7
	}

	return &NeoWsClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		client:         &http.Client{},
		limiter:        rate.NewLimiter(limit, 1),
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		maxWindowDays:  window,
	}
}

// Feed returns the merged feed for r, issuing one request per chunk of at
// most maxWindowDays days.
func (c *NeoWsClient) Feed(ctx context.Context, r models.DateRange) (*models.NeoWsFeed, error) {
	merged := &models.NeoWsFeed{NearEarthObjects: make(map[string][]models.NeoWsObject)}

	for _, window := range SplitWindows(r, c.maxWindowDays) {
		feed, err := c.fetchWindow(ctx, window)
		if err != nil {
			return nil, err
		}
		for day, objs := range feed.NearEarthObjects {
			merged.NearEarthObjects[day] = append(merged.NearEarthObjects[day], objs...)
			merged.ElementCount += len(objs)
		}
	}

	return merged, nil
}

// SplitWindows cuts r into consecutive windows of at most maxDays days.
func SplitWindows(r models.DateRange, maxDays int) []models.DateRange {
	if maxDays <= 0 {
		return []models.DateRange{r}
	}
	windows := make([]models.DateRange, 0, (r.Days()+maxDays-1)/maxDays)
	for start := r.Start; !start.After(r.End); start = start.AddDays(maxDays) {
		end := models.MinDate(start.AddDays(maxDays-1), r.End)
		windows = append(windows, models.DateRange{Start: start, End: end})
	}
	return windows
}

// fetchWindow performs one feed call, bounded by requestTimeout including
// retries and rate limiter waits.
func (c *NeoWsClient) fetchWindow(ctx context.Context, window models.DateRange) (feed *models.NeoWsFeed, err error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(feedEndpoint, time.Since(start), err)
	}()

	params := url.Values{}
	params.Set("start_date", window.Start.String())
	params.Set("end_date", window.End.String())
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + feedPath + "?" + params.Encode()

	resp, err := c.doRequestWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", window, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("feed %s request failed with status %d: %s", window, resp.StatusCode, string(body))
	}

	feed = &models.NeoWsFeed{}
	if err := json.NewDecoder(resp.Body).Decode(feed); err != nil {
		return nil, fmt.Errorf("decode feed %s response: %w", window, err)
	}
	if feed.NearEarthObjects == nil {
		feed.NearEarthObjects = make(map[string][]models.NeoWsObject)
	}

	logging.Ctx(ctx).Debug().
		Str("window", window.String()).
		Int("element_count", feed.ElementCount).
		Dur("duration", time.Since(start)).
		Msg("Fetched NeoWs feed window")

	return feed, nil
}

// doRequestWithRetry sends a GET, waiting on the shared limiter before every
// attempt. Retryable statuses are retried until maxRetries is spent; the
// final response is returned to the caller with its body open.
func (c *NeoWsClient) doRequestWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if !retryableStatus(resp.StatusCode) || attempt >= c.maxRetries {
			return resp, nil
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			delay = ra
		}
		_ = resp.Body.Close()

		metrics.RecordUpstreamRetry(feedEndpoint, resp.StatusCode)
		logging.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("NeoWs request throttled, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// parseRetryAfter accepts both forms of RFC 9110 Retry-After: delay seconds
// or an HTTP date. The result is capped at maxRetryAfter.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}

	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
