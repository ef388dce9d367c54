// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto and
// are updated via the Record* helpers so call sites stay one line long:
//   - Range Store queries (per backend and operation)
//   - API endpoint latency and throughput
//   - Gap fills (requested days, missing days, intervals, failures)
//   - NeoWs upstream calls and the circuit breaker in front of them
package metrics

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neowatch_db_query_duration_seconds",
			Help:    "Duration of Range Store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_db_query_errors_total",
			Help: "Total number of Range Store query errors",
		},
		[]string{"driver", "operation", "error_type"},
	)

	DBTransactionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_db_transaction_retries_total",
			Help: "Upsert transactions retried after a write conflict",
		},
		[]string{"driver"},
	)

	DBAsteroidsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neowatch_db_asteroids_stored",
			Help: "Number of asteroid records in the Range Store, sampled after each fill",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neowatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // gap fills can take several upstream round trips
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neowatch_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_api_rate_limit_hits_total",
			Help: "Total number of inbound rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Gap Fill Metrics
	SyncFillDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neowatch_sync_fill_duration_seconds",
			Help:    "Duration of gap fills in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"trigger"}, // "request", "prefetch"
	)

	SyncMissingDays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neowatch_sync_missing_days_total",
			Help: "Days found missing from the Range Store by the gap calculator",
		},
	)

	SyncIntervals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_sync_intervals_total",
			Help: "Merged intervals processed by the orchestrator",
		},
		[]string{"result"}, // "success", "upstream_error", "persistence_error"
	)

	SyncRecordsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neowatch_sync_records_upserted_total",
			Help: "Asteroid records written by gap fills",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neowatch_sync_last_success_timestamp",
			Help: "Unix timestamp of the last fill that completed without interval failures",
		},
	)

	// Upstream Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neowatch_upstream_request_duration_seconds",
			Help:    "NeoWs feed request duration in seconds, including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_upstream_errors_total",
			Help: "NeoWs feed request failures",
		},
		[]string{"endpoint", "error_type"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_upstream_retries_total",
			Help: "NeoWs requests retried after a 429 or 5xx",
		},
		[]string{"endpoint", "status_code"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "neowatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "neowatch_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neowatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "neowatch_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version", "db_driver"},
	)
)

// RecordDBQuery records a Range Store query metric
func RecordDBQuery(driver, operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(driver, operation, classifyError(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Interval results for RecordSyncInterval.
const (
	IntervalSuccess          = "success"
	IntervalUpstreamError    = "upstream_error"
	IntervalPersistenceError = "persistence_error"
)

// RecordSyncFill records one completed gap fill.
func RecordSyncFill(trigger string, duration time.Duration, missingDays, upserted, failures int) {
	SyncFillDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	SyncMissingDays.Add(float64(missingDays))
	SyncRecordsUpserted.Add(float64(upserted))
	if failures == 0 {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordSyncInterval counts one processed interval by result.
func RecordSyncInterval(result string) {
	SyncIntervals.WithLabelValues(result).Inc()
}

// RecordUpstreamRequest records a NeoWs call. A nil err counts only toward
// the duration histogram.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(endpoint, classifyError(err)).Inc()
	}
}

// RecordUpstreamRetry counts a retried NeoWs call.
func RecordUpstreamRetry(endpoint string, statusCode int) {
	UpstreamRetries.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// classifyError buckets errors into a small label set. Raw error strings
// would explode label cardinality.
func classifyError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection_refused"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	case strings.Contains(msg, "conflict"):
		return "conflict"
	case strings.Contains(msg, "status 429"), strings.Contains(msg, "rate limit"):
		return "rate_limited"
	case strings.Contains(msg, "status 5"):
		return "server_error"
	case strings.Contains(msg, "status 4"):
		return "client_error"
	case strings.Contains(msg, "decode"), strings.Contains(msg, "unmarshal"):
		return "decode"
	case strings.Contains(msg, "connection refused"):
		return "connection_refused"
	default:
		return "other"
	}
}
