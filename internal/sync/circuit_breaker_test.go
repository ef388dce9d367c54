// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/neowatch/internal/metrics"
	"github.com/tomtom215/neowatch/internal/models"
)

// fetcherFunc adapts a function to FeedFetcher.
type fetcherFunc func(ctx context.Context, r models.DateRange) (*models.NeoWsFeed, error)

func (f fetcherFunc) Feed(ctx context.Context, r models.DateRange) (*models.NeoWsFeed, error) {
	return f(ctx, r)
}

var errSimulated = errors.New("simulated API failure")

func emptyFeed() *models.NeoWsFeed {
	return &models.NeoWsFeed{NearEarthObjects: map[string][]models.NeoWsObject{}}
}

// newTestBreaker builds a CircuitBreakerClient with a short timeout so
// half-open transitions can be observed.
func newTestBreaker(name string, maxRequests uint32) *CircuitBreakerClient {
	return &CircuitBreakerClient{
		fetcher: fetcherFunc(func(context.Context, models.DateRange) (*models.NeoWsFeed, error) {
			return emptyFeed(), nil
		}),
		cb: gobreaker.NewCircuitBreaker[*models.NeoWsFeed](gobreaker.Settings{
			Name:        name,
			MaxRequests: maxRequests,
			Interval:    time.Second,
			Timeout:     100 * time.Millisecond,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < 10 {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
		}),
		name: name,
	}
}

func failN(cbc *CircuitBreakerClient, n int) {
	for i := 0; i < n; i++ {
		_, _ = cbc.execute(func() (*models.NeoWsFeed, error) {
			return nil, errSimulated
		})
	}
}

// TestCircuitBreaker_OpensAfterFailures verifies circuit opens after exceeding failure threshold
func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cbc := NewCircuitBreakerClient(fetcherFunc(func(context.Context, models.DateRange) (*models.NeoWsFeed, error) {
		return nil, errSimulated
	}))

	if state := cbc.cb.State(); state != gobreaker.StateClosed {
		t.Errorf("Expected initial state to be Closed, got %v", state)
	}

	// 7 failures and 3 successes: 70% failure rate over 10 requests.
	failures := 0
	for i := 0; i < 10; i++ {
		_, err := cbc.execute(func() (*models.NeoWsFeed, error) {
			if i < 7 {
				return nil, errSimulated
			}
			return emptyFeed(), nil
		})
		if err != nil {
			failures++
		}
	}
	checkIntEqual(t, "failures", failures, 7)

	// The trip check runs on failure, so one more failure opens the circuit.
	_, _ = cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01"))

	if state := cbc.cb.State(); state != gobreaker.StateOpen {
		t.Fatalf("Expected circuit to be Open after 70%% failure rate, got %v", state)
	}
	if cbc.State() != "open" {
		t.Errorf("State() = %q, want open", cbc.State())
	}

	_, err := cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01"))
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen when circuit is open, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected wrapped gobreaker.ErrOpenState, got %v", err)
	}
}

// TestCircuitBreaker_DoesNotOpenBelowThreshold verifies circuit stays closed below failure threshold
func TestCircuitBreaker_DoesNotOpenBelowThreshold(t *testing.T) {
	cbc := newTestBreaker("test-below-threshold", 3)

	for i := 0; i < 10; i++ {
		_, _ = cbc.execute(func() (*models.NeoWsFeed, error) {
			if i < 5 {
				return nil, errSimulated
			}
			return emptyFeed(), nil
		})
	}

	if state := cbc.cb.State(); state != gobreaker.StateClosed {
		t.Errorf("Expected circuit to remain Closed with 50%% failure rate, got %v", state)
	}
}

// TestCircuitBreaker_RequiresMinimumRequests verifies circuit requires minimum 10 requests
func TestCircuitBreaker_RequiresMinimumRequests(t *testing.T) {
	cbc := newTestBreaker("test-minimum-requests", 3)
	failN(cbc, 5)

	if state := cbc.cb.State(); state != gobreaker.StateClosed {
		t.Errorf("Expected circuit to remain Closed with <10 requests, got %v", state)
	}
}

// TestCircuitBreaker_ClosesAfterSuccessInHalfOpen verifies recovery after the timeout
func TestCircuitBreaker_ClosesAfterSuccessInHalfOpen(t *testing.T) {
	cbc := newTestBreaker("test-recovery", 1)
	failN(cbc, 10)

	if state := cbc.cb.State(); state != gobreaker.StateOpen {
		t.Fatalf("Expected circuit to be Open, got %v", state)
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01")); err != nil {
		t.Errorf("Expected successful request in half-open, got error: %v", err)
	}
	if state := cbc.cb.State(); state != gobreaker.StateClosed {
		t.Errorf("Expected circuit to close after success in half-open, got %v", state)
	}
}

// TestCircuitBreaker_CancelledRequestsDoNotTrip verifies cancellations are not failures
func TestCircuitBreaker_CancelledRequestsDoNotTrip(t *testing.T) {
	cbc := NewCircuitBreakerClient(fetcherFunc(func(ctx context.Context, _ models.DateRange) (*models.NeoWsFeed, error) {
		return nil, context.Canceled
	}))

	for i := 0; i < 20; i++ {
		_, _ = cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01"))
	}

	if state := cbc.cb.State(); state != gobreaker.StateClosed {
		t.Errorf("cancelled requests tripped the breaker: %v", state)
	}
}

// TestCircuitBreaker_MetricsUpdated verifies request outcomes are counted
func TestCircuitBreaker_MetricsUpdated(t *testing.T) {
	cbc := newTestBreaker("test-metrics", 1)

	success := metrics.CircuitBreakerRequests.WithLabelValues("test-metrics", "success")
	failure := metrics.CircuitBreakerRequests.WithLabelValues("test-metrics", "failure")
	rejected := metrics.CircuitBreakerRequests.WithLabelValues("test-metrics", "rejected")

	_, _ = cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01"))
	failN(cbc, 10)
	_, _ = cbc.Feed(context.Background(), dr("2024-01-01", "2024-01-01"))

	if got := testutil.ToFloat64(success); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	// The success counts toward the window, so the 9th failure trips the
	// breaker and the last two calls are rejected.
	if got := testutil.ToFloat64(failure); got != 9 {
		t.Errorf("failure count = %v, want 9", got)
	}
	if got := testutil.ToFloat64(rejected); got != 2 {
		t.Errorf("rejected count = %v, want 2", got)
	}
}

// TestCircuitBreaker_StateHelpers verifies stateToFloat and stateToString helpers
func TestCircuitBreaker_StateHelpers(t *testing.T) {
	tests := []struct {
		state       gobreaker.State
		expectedStr string
		expectedNum float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}

	for _, tt := range tests {
		t.Run(tt.expectedStr, func(t *testing.T) {
			if str := stateToString(tt.state); str != tt.expectedStr {
				t.Errorf("stateToString(%v) = %s, expected %s", tt.state, str, tt.expectedStr)
			}
			if num := stateToFloat(tt.state); num != tt.expectedNum {
				t.Errorf("stateToFloat(%v) = %f, expected %f", tt.state, num, tt.expectedNum)
			}
		})
	}
}

// TestCircuitBreaker_ImplementsFeedFetcher is a compile-time check.
func TestCircuitBreaker_ImplementsFeedFetcher(t *testing.T) {
	var _ FeedFetcher = (*CircuitBreakerClient)(nil)
	var _ FeedFetcher = (*NeoWsClient)(nil)
}
