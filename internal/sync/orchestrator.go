// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/metrics"
	"github.com/tomtom215/neowatch/internal/models"
)

// Store is the part of the Range Store the orchestrator needs.
// *database.DB implements it.
type Store interface {
	// Coverage returns the distinct coverage intervals of stored records
	// that overlap r.
	Coverage(ctx context.Context, r models.DateRange) ([]models.DateRange, error)

	// UpsertAsteroids writes records in one transaction, widening the
	// coverage of existing rows. It returns the number of rows written.
	UpsertAsteroids(ctx context.Context, records []models.AsteroidRecord) (int, error)
}

// Fill triggers, used as a metrics label.
const (
	TriggerRequest  = "request"
	TriggerPrefetch = "prefetch"
)

// FillReport summarizes one gap fill.
type FillReport struct {
	Requested models.DateRange
	Missing   int                // days of Requested absent from the store
	Intervals []models.DateRange // merged gaps, in ascending order
	Fetched   int                // normalized records over all intervals
	Upserted  int                // rows written over all intervals
	Failures  []IntervalFailure  // in interval order
	Duration  time.Duration
}

// Complete reports whether every interval was filled.
func (r *FillReport) Complete() bool {
	return len(r.Failures) == 0
}

// AllUpstreamFailed reports whether there was something to fetch and every
// interval failed at the fetch stage.
func (r *FillReport) AllUpstreamFailed() bool {
	if len(r.Intervals) == 0 || len(r.Failures) != len(r.Intervals) {
		return false
	}
	for _, f := range r.Failures {
		if f.Stage != StageFetch {
			return false
		}
	}
	return true
}

// UpstreamError folds the fetch failures into a single *UpstreamFetchError
// covering Requested. It returns nil when no interval failed upstream.
func (r *FillReport) UpstreamError() *UpstreamFetchError {
	var errs []error
	for _, f := range r.Failures {
		if f.Stage == StageFetch {
			errs = append(errs, f.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &UpstreamFetchError{Interval: r.Requested, Err: errors.Join(errs...)}
}

// PersistError joins the errors of intervals whose upsert failed. The store
// returns *database.PersistenceError, so errors.As still reaches it. It
// returns nil when every failure, if any, was upstream.
func (r *FillReport) PersistError() error {
	var errs []error
	for _, f := range r.Failures {
		if f.Stage == StagePersist {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// Orchestrator fills the gaps of a requested range from NeoWs.
type Orchestrator struct {
	store       Store
	fetcher     FeedFetcher
	concurrency int
}

// NewOrchestrator wires a store and a fetcher. cfg.Concurrency bounds how
// many intervals are processed at once; values below 2 mean sequential.
func NewOrchestrator(store Store, fetcher FeedFetcher, cfg *config.SyncConfig) *Orchestrator {
	concurrency := 1
	if cfg != nil && cfg.Concurrency > 1 {
		concurrency = cfg.Concurrency
	}
	return &Orchestrator{
		store:       store,
		fetcher:     fetcher,
		concurrency: concurrency,
	}
}

// Fill makes every day of r present in the store, as far as NeoWs allows.
//
// Interval failures are collected in the report and do not stop the fill.
// The returned error is non-nil only when the store's coverage could not be
// read, in which case nothing was fetched.
func (o *Orchestrator) Fill(ctx context.Context, r models.DateRange) (*FillReport, error) {
	return o.fill(ctx, r, TriggerRequest)
}

func (o *Orchestrator) fill(ctx context.Context, r models.DateRange, trigger string) (*FillReport, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx)
	start := time.Now()

	coverage, err := o.store.Coverage(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("read coverage for %s: %w", r, err)
	}

	missing := MissingDates(r, coverage)
	report := &FillReport{
		Requested: r,
		Missing:   len(missing),
		Intervals: MergeDates(missing),
	}

	if len(report.Intervals) == 0 {
		report.Duration = time.Since(start)
		log.Debug().Str("range", r.String()).Msg("Range fully covered, no upstream calls")
		return report, nil
	}

	log.Info().
		Str("range", r.String()).
		Int("missing_days", report.Missing).
		Int("intervals", len(report.Intervals)).
		Str("trigger", trigger).
		Msg("Gap fill started")

	results := o.processIntervals(ctx, report.Intervals)
	for _, res := range results {
		report.Fetched += res.fetched
		report.Upserted += res.upserted
		if res.failure != nil {
			report.Failures = append(report.Failures, *res.failure)
		}
	}

	report.Duration = time.Since(start)
	metrics.RecordSyncFill(trigger, report.Duration, report.Missing, report.Upserted, len(report.Failures))

	event := log.Info()
	if !report.Complete() {
		event = log.Warn()
	}
	event.
		Str("range", r.String()).
		Int("fetched", report.Fetched).
		Int("upserted", report.Upserted).
		Int("failed_intervals", len(report.Failures)).
		Dur("duration", report.Duration).
		Msg("Gap fill finished")

	return report, nil
}

type intervalResult struct {
	fetched  int
	upserted int
	failure  *IntervalFailure
}

// processIntervals runs processInterval for every interval and returns the
// results in interval order. At most o.concurrency intervals run at once.
func (o *Orchestrator) processIntervals(ctx context.Context, intervals []models.DateRange) []intervalResult {
	results := make([]intervalResult, len(intervals))

	if o.concurrency <= 1 || len(intervals) == 1 {
		for i, interval := range intervals {
			results[i] = o.processInterval(ctx, interval)
		}
		return results
	}

	workers := min(o.concurrency, len(intervals))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.processInterval(ctx, intervals[i])
			}
		}()
	}

	for i := range intervals {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// processInterval fetches, normalizes and upserts one interval. Failures are
// returned in the result, never as an error.
func (o *Orchestrator) processInterval(ctx context.Context, interval models.DateRange) intervalResult {
	log := logging.Ctx(ctx)

	feed, err := o.fetcher.Feed(ctx, interval)
	if err != nil {
		fetchErr := &UpstreamFetchError{Interval: interval, Err: err}
		metrics.RecordSyncInterval(metrics.IntervalUpstreamError)
		log.Warn().Err(err).Str("interval", interval.String()).Msg("Upstream fetch failed, skipping interval")
		return intervalResult{failure: &IntervalFailure{Interval: interval, Stage: StageFetch, Err: fetchErr}}
	}

	records := NormalizeFeed(feed)
	// An object can be listed under a key outside the window it was asked
	// for; clamp its coverage so no unrequested day is marked as covered.
	records = clampCoverage(records, interval)

	upserted, err := o.store.UpsertAsteroids(ctx, records)
	if err != nil {
		metrics.RecordSyncInterval(metrics.IntervalPersistenceError)
		log.Error().Err(err).Str("interval", interval.String()).Msg("Upsert failed, interval rolled back")
		return intervalResult{
			fetched: len(records),
			failure: &IntervalFailure{Interval: interval, Stage: StagePersist, Err: err},
		}
	}

	metrics.RecordSyncInterval(metrics.IntervalSuccess)
	log.Debug().
		Str("interval", interval.String()).
		Int("records", len(records)).
		Int("upserted", upserted).
		Msg("Interval filled")

	return intervalResult{fetched: len(records), upserted: upserted}
}

// clampCoverage drops records listed entirely outside interval and trims the
// coverage of the rest to it.
func clampCoverage(records []models.AsteroidRecord, interval models.DateRange) []models.AsteroidRecord {
	kept := records[:0]
	for _, rec := range records {
		if !rec.Coverage().Overlaps(interval) {
			continue
		}
		rec.RangeStart = models.MaxDate(rec.RangeStart, interval.Start)
		rec.RangeEnd = models.MinDate(rec.RangeEnd, interval.End)
		kept = append(kept, rec)
	}
	return kept
}
