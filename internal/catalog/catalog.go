// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

// Package catalog answers dashboard queries over the Range Store.
//
// Query is read-only. FillAndQuery first asks the sync orchestrator to fill
// the gaps of the range and then queries, so the dashboard's list view is
// always as complete as NeoWs allows. Get serves a single asteroid.
//
// Store errors pass through unchanged (they are *database.PersistenceError),
// so callers can tell an unreachable database from other failures.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/neowatch/internal/database"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/models"
	intsync "github.com/tomtom215/neowatch/internal/sync"
)

var (
	// ErrNoAsteroids is returned when no stored record overlaps the range.
	ErrNoAsteroids = errors.New("no asteroid data found for the given date range")

	// ErrAsteroidNotFound is returned by Get for an unknown reference id.
	ErrAsteroidNotFound = errors.New("asteroid not found")
)

// Reader is the read side of the Range Store. *database.DB implements it.
type Reader interface {
	QueryRange(ctx context.Context, r models.DateRange) ([]models.AsteroidRecord, error)
	GetAsteroid(ctx context.Context, neoReferenceID string) (*models.AsteroidRecord, error)
}

// Filler fills the gaps of a range. *sync.Orchestrator implements it.
type Filler interface {
	Fill(ctx context.Context, r models.DateRange) (*intsync.FillReport, error)
}

// Service combines the store and the gap filler.
type Service struct {
	reader Reader
	filler Filler
}

// NewService creates a Service. filler may be nil, in which case
// FillAndQuery behaves like Query.
func NewService(reader Reader, filler Filler) *Service {
	return &Service{reader: reader, filler: filler}
}

// Query returns the stored records whose coverage overlaps r, ordered by
// close-approach date then reference id. It never contacts NeoWs.
func (s *Service) Query(ctx context.Context, r models.DateRange) ([]models.AsteroidRecord, error) {
	records, err := s.reader.QueryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoAsteroids
	}
	return records, nil
}

// FillAndQuery fills the gaps of r from NeoWs, then queries.
//
// Interval failures during the fill are tolerated: whatever was stored is
// returned. When nothing is stored and every interval failed upstream, the
// result is an *intsync.UpstreamFetchError instead of ErrNoAsteroids, since
// the empty answer says nothing about the sky. Likewise an empty answer after
// a failed upsert returns that store error, not ErrNoAsteroids. The fill
// report is returned whenever the fill ran.
func (s *Service) FillAndQuery(ctx context.Context, r models.DateRange) ([]models.AsteroidRecord, *intsync.FillReport, error) {
	if s.filler == nil {
		records, err := s.Query(ctx, r)
		return records, nil, err
	}

	report, err := s.filler.Fill(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("fill %s: %w", r, err)
	}

	records, err := s.Query(ctx, r)
	if errors.Is(err, ErrNoAsteroids) && report.AllUpstreamFailed() {
		logging.Ctx(ctx).Warn().
			Str("range", r.String()).
			Int("failed_intervals", len(report.Failures)).
			Msg("No stored data and every upstream fetch failed")
		return nil, report, report.UpstreamError()
	}
	if errors.Is(err, ErrNoAsteroids) {
		if perr := report.PersistError(); perr != nil {
			return nil, report, fmt.Errorf("fill %s: %w", r, perr)
		}
	}
	if err != nil {
		return nil, report, err
	}

	return records, report, nil
}

// Get returns one asteroid by neo_reference_id.
func (s *Service) Get(ctx context.Context, neoReferenceID string) (*models.AsteroidRecord, error) {
	rec, err := s.reader.GetAsteroid(ctx, neoReferenceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrAsteroidNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
