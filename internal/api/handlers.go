// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/neowatch/internal/models"
	intsync "github.com/tomtom215/neowatch/internal/sync"
)

// Catalog is the query surface the handlers need. *catalog.Service
// implements it.
type Catalog interface {
	Query(ctx context.Context, r models.DateRange) ([]models.AsteroidRecord, error)
	FillAndQuery(ctx context.Context, r models.DateRange) ([]models.AsteroidRecord, *intsync.FillReport, error)
	Get(ctx context.Context, neoReferenceID string) (*models.AsteroidRecord, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerState reports the upstream circuit breaker state.
type BreakerState interface {
	State() string
}

// SyncStatus reports background prefetch progress. *sync.Manager implements it.
type SyncStatus interface {
	IsRunning() bool
	LastSyncTime() time.Time
	LastReport() *intsync.FillReport
}

// RecordCounter reports how many asteroids are stored. *database.DB
// implements it.
type RecordCounter interface {
	CountAsteroids(ctx context.Context) (int64, error)
}

// Handler holds the dependencies of every route.
type Handler struct {
	catalog      Catalog
	db           Pinger
	breaker      BreakerState
	sync         SyncStatus
	counter      RecordCounter
	maxRangeDays int
	version      string
	startTime    time.Time
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithBreaker exposes the upstream circuit breaker state on /api/health.
func WithBreaker(b BreakerState) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithSyncStatus exposes the prefetch state on /api/health.
func WithSyncStatus(s SyncStatus) HandlerOption {
	return func(h *Handler) { h.sync = s }
}

// WithRecordCounter exposes the stored record count on /api/health.
func WithRecordCounter(c RecordCounter) HandlerOption {
	return func(h *Handler) { h.counter = c }
}

// WithMaxRangeDays caps the length of the requested range. Zero disables the cap.
func WithMaxRangeDays(days int) HandlerOption {
	return func(h *Handler) { h.maxRangeDays = days }
}

// WithVersion sets the version reported on /api/health.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) { h.version = version }
}

// NewHandler creates a Handler.
func NewHandler(catalog Catalog, db Pinger, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog:   catalog,
		db:        db,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListNeos handles GET /api/neos. It answers from the local store only.
func (h *Handler) ListNeos(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r, h.maxRangeDays)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	records, err := h.catalog.Query(r.Context(), dr)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Asteroids(records)
}

// ListAndFillNeos handles GET /api/neos/list. Missing days are fetched from
// NeoWs before the range is queried. Partial upstream failures still return
// whatever is stored.
func (h *Handler) ListAndFillNeos(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r, h.maxRangeDays)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	records, report, err := h.catalog.FillAndQuery(r.Context(), dr)
	if report != nil && !report.Complete() {
		w.Header().Set(PartialFillHeader, "true")
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Asteroids(records)
}

// PartialFillHeader is set on /api/neos/list responses when at least one
// missing interval could not be filled.
const PartialFillHeader = "X-NeoWatch-Partial"

// GetNeo handles GET /api/neo/{id}. The record is written as a bare object.
func (h *Handler) GetNeo(w http.ResponseWriter, r *http.Request) {
	id, err := parseNeoID(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	rec, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).JSON(http.StatusOK, rec)
}
