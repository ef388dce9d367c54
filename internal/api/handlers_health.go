// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/neowatch/internal/logging"
)

// healthPingTimeout bounds the database ping of a health check.
const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of /api/health.
type HealthStatus struct {
	Status         string     `json:"status"`
	Database       string     `json:"database"`
	CircuitBreaker string     `json:"circuit_breaker"`
	Version        string     `json:"version"`
	Uptime         float64    `json:"uptime_seconds"`
	LastSyncTime   *time.Time `json:"last_sync,omitempty"`

	// Records is omitted when no counter is configured or counting failed.
	Records  *int64          `json:"records,omitempty"`
	Prefetch *PrefetchHealth `json:"prefetch,omitempty"`
}

// PrefetchHealth describes the background prefetch. It is present only when
// prefetch is enabled.
type PrefetchHealth struct {
	Running         bool `json:"running"`
	FailedIntervals int  `json:"last_failed_intervals"`
}

// Health handles GET /api/health. It returns 503 when the database does not
// answer a ping; an open circuit breaker alone only marks the status degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	dbConnected := false
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
		} else {
			dbConnected = true
		}
	}

	breakerState := "unknown"
	if h.breaker != nil {
		breakerState = h.breaker.State()
	}

	health := HealthStatus{
		Status:         "healthy",
		Database:       "connected",
		CircuitBreaker: breakerState,
		Version:        h.version,
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	if h.sync != nil {
		if last := h.sync.LastSyncTime(); !last.IsZero() {
			health.LastSyncTime = &last
		}
		health.Prefetch = &PrefetchHealth{Running: h.sync.IsRunning()}
		if report := h.sync.LastReport(); report != nil {
			health.Prefetch.FailedIntervals = len(report.Failures)
		}
	}

	if h.counter != nil && dbConnected {
		if n, err := h.counter.CountAsteroids(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check record count failed")
		} else {
			health.Records = &n
		}
	}

	status := http.StatusOK
	switch {
	case !dbConnected:
		health.Status = "unhealthy"
		health.Database = "unreachable"
		status = http.StatusServiceUnavailable
	case breakerState == "open":
		health.Status = "degraded"
	}

	NewResponseWriter(w, r).JSON(status, health)
}
