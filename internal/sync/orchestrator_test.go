// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/models"
	"github.com/tomtom215/neowatch/internal/testinfra"
)

// memStore is an in-memory Store with the same widening upsert semantics
// as the Range Store.
type memStore struct {
	mu          sync.Mutex
	records     map[string]models.AsteroidRecord
	coverageErr error
	upsertErr   func(records []models.AsteroidRecord) error
	upserts     int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]models.AsteroidRecord)}
}

func (s *memStore) Coverage(_ context.Context, r models.DateRange) ([]models.DateRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coverageErr != nil {
		return nil, s.coverageErr
	}
	seen := make(map[models.DateRange]bool)
	var out []models.DateRange
	for _, rec := range s.records {
		c := rec.Coverage()
		if c.Overlaps(r) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) UpsertAsteroids(_ context.Context, records []models.AsteroidRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		if err := s.upsertErr(records); err != nil {
			return 0, err
		}
	}
	for _, rec := range records {
		if existing, ok := s.records[rec.NeoReferenceID]; ok {
			rec.Widen(existing.Coverage())
		}
		s.records[rec.NeoReferenceID] = rec
	}
	return len(records), nil
}

func (s *memStore) coverageOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ""
	}
	return rec.Coverage().String()
}

func (s *memStore) snapshot() map[string]models.AsteroidRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.AsteroidRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// fakeFeed serves objects from a map keyed by date and records every call.
type fakeFeed struct {
	mu      sync.Mutex
	objects map[string][]models.NeoWsObject
	fail    map[string]error // interval start -> error
	calls   []models.DateRange
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{objects: make(map[string][]models.NeoWsObject), fail: make(map[string]error)}
}

func (f *fakeFeed) add(id, day string) {
	f.objects[day] = append(f.objects[day], testinfra.NeoObject(id, "("+id+")", day))
}

func (f *fakeFeed) Feed(_ context.Context, r models.DateRange) (*models.NeoWsFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r)
	if err := f.fail[r.Start.String()]; err != nil {
		return nil, err
	}
	feed := &models.NeoWsFeed{NearEarthObjects: make(map[string][]models.NeoWsObject)}
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		objs := f.objects[d.String()]
		feed.NearEarthObjects[d.String()] = objs
		feed.ElementCount += len(objs)
	}
	return feed, nil
}

func (f *fakeFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFeed) sortedCalls() []models.DateRange {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.DateRange{}, f.calls...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func TestOrchestrator_EmptyStore(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	feed.add("100", "2024-01-01")
	feed.add("200", "2024-01-03")
	feed.add("300", "2024-01-05")

	report, err := NewOrchestrator(store, feed, &config.SyncConfig{}).Fill(context.Background(), dr("2024-01-01", "2024-01-05"))
	checkNoError(t, err)

	checkIntEqual(t, "Missing", report.Missing, 5)
	checkIntervals(t, report.Intervals, "2024-01-01..2024-01-05")
	checkIntervals(t, feed.sortedCalls(), "2024-01-01..2024-01-05")
	checkIntEqual(t, "Fetched", report.Fetched, 3)
	checkIntEqual(t, "Upserted", report.Upserted, 3)
	if !report.Complete() {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
	if got := store.coverageOf("200"); got != "2024-01-03..2024-01-03" {
		t.Errorf("coverage of 200 = %q", got)
	}
}

func TestOrchestrator_PartiallyCovered(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	_, _ = store.UpsertAsteroids(context.Background(), []models.AsteroidRecord{
		{NeoReferenceID: "a", RangeStart: models.MustParseDate("2024-01-02"), RangeEnd: models.MustParseDate("2024-01-02")},
		{NeoReferenceID: "b", RangeStart: models.MustParseDate("2024-01-03"), RangeEnd: models.MustParseDate("2024-01-03")},
	})

	report, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-01", "2024-01-05"))
	checkNoError(t, err)

	checkIntEqual(t, "Missing", report.Missing, 3)
	checkIntervals(t, report.Intervals, "2024-01-01..2024-01-01", "2024-01-04..2024-01-05")
	checkIntervals(t, feed.sortedCalls(), "2024-01-01..2024-01-01", "2024-01-04..2024-01-05")
}

func TestOrchestrator_FullyCoveredMakesNoCalls(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	_, _ = store.UpsertAsteroids(context.Background(), []models.AsteroidRecord{
		{NeoReferenceID: "a", RangeStart: models.MustParseDate("2024-01-01"), RangeEnd: models.MustParseDate("2024-01-10")},
	})

	report, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-02", "2024-01-04"))
	checkNoError(t, err)

	checkIntEqual(t, "Missing", report.Missing, 0)
	checkIntEqual(t, "upstream calls", feed.callCount(), 0)
	checkIntEqual(t, "upserts", store.upserts, 1)
}

func TestOrchestrator_IdempotentFill(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	for d := models.MustParseDate("2024-01-01"); !d.After(models.MustParseDate("2024-01-07")); d = d.AddDays(1) {
		feed.add(fmt.Sprintf("id-%s", d), d.String())
	}
	feed.add("shared", "2024-01-02")
	feed.add("shared", "2024-01-06")

	orch := NewOrchestrator(store, feed, nil)
	r := dr("2024-01-01", "2024-01-07")

	_, err := orch.Fill(context.Background(), r)
	checkNoError(t, err)
	first := store.snapshot()
	calls := feed.callCount()

	report, err := orch.Fill(context.Background(), r)
	checkNoError(t, err)

	checkIntEqual(t, "second fill missing days", report.Missing, 0)
	checkIntEqual(t, "second fill upstream calls", feed.callCount()-calls, 0)

	second := store.snapshot()
	if len(first) != len(second) {
		t.Fatalf("record count changed: %d -> %d", len(first), len(second))
	}
	for id, rec := range first {
		after := second[id]
		if after.Coverage() != rec.Coverage() {
			t.Errorf("%s coverage changed: %s -> %s", id, rec.Coverage(), after.Coverage())
		}
	}
	if got := store.coverageOf("shared"); got != "2024-01-02..2024-01-06" {
		t.Errorf("shared coverage = %q", got)
	}
}

func TestOrchestrator_PartialFailureIsolation(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	feed.add("100", "2024-01-01")
	feed.add("300", "2024-01-05")
	feed.add("500", "2024-01-09")
	feed.fail["2024-01-05"] = errSimulated

	// Pre-cover 01-03 and 01-07 to split the range into three intervals.
	_, _ = store.UpsertAsteroids(context.Background(), []models.AsteroidRecord{
		{NeoReferenceID: "x", RangeStart: models.MustParseDate("2024-01-02"), RangeEnd: models.MustParseDate("2024-01-04")},
		{NeoReferenceID: "y", RangeStart: models.MustParseDate("2024-01-06"), RangeEnd: models.MustParseDate("2024-01-08")},
	})

	report, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-01", "2024-01-09"))
	checkNoError(t, err)

	checkIntervals(t, report.Intervals, "2024-01-01..2024-01-01", "2024-01-05..2024-01-05", "2024-01-09..2024-01-09")
	checkIntEqual(t, "failures", len(report.Failures), 1)
	checkIntEqual(t, "Upserted", report.Upserted, 2)

	failure := report.Failures[0]
	if failure.Stage != StageFetch || failure.Interval.String() != "2024-01-05..2024-01-05" {
		t.Errorf("failure = %+v", failure)
	}
	var fetchErr *UpstreamFetchError
	if !errors.As(failure.Err, &fetchErr) || !errors.Is(fetchErr, errSimulated) {
		t.Errorf("failure should wrap UpstreamFetchError(errSimulated), got %v", failure.Err)
	}

	if store.coverageOf("100") == "" || store.coverageOf("500") == "" {
		t.Error("intervals around the failed one were not committed")
	}
	if store.coverageOf("300") != "" {
		t.Error("failed interval produced records")
	}
	if report.AllUpstreamFailed() {
		t.Error("AllUpstreamFailed should be false")
	}
}

func TestOrchestrator_AllUpstreamFailed(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	feed.fail["2024-01-01"] = fmt.Errorf("wrapped: %w", ErrCircuitOpen)

	report, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-01", "2024-01-03"))
	checkNoError(t, err)

	if !report.AllUpstreamFailed() {
		t.Fatal("expected AllUpstreamFailed")
	}
	agg := report.UpstreamError()
	if agg == nil {
		t.Fatal("expected aggregate upstream error")
	}
	if agg.Interval != report.Requested {
		t.Errorf("aggregate interval = %s, want %s", agg.Interval, report.Requested)
	}
	if !errors.Is(agg, ErrCircuitOpen) {
		t.Errorf("aggregate should wrap ErrCircuitOpen, got %v", agg)
	}
	if report.PersistError() != nil {
		t.Errorf("PersistError() = %v, want nil", report.PersistError())
	}
}

func TestOrchestrator_PersistenceFailure(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	feed.add("100", "2024-01-01")
	feed.add("300", "2024-01-03")
	_, _ = store.UpsertAsteroids(context.Background(), []models.AsteroidRecord{
		{NeoReferenceID: "x", RangeStart: models.MustParseDate("2024-01-02"), RangeEnd: models.MustParseDate("2024-01-02")},
	})
	errDisk := errors.New("disk full")
	store.upsertErr = func(records []models.AsteroidRecord) error {
		for _, r := range records {
			if r.NeoReferenceID == "100" {
				return errDisk
			}
		}
		return nil
	}

	report, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-01", "2024-01-03"))
	checkNoError(t, err)

	checkIntEqual(t, "failures", len(report.Failures), 1)
	if f := report.Failures[0]; f.Stage != StagePersist || !errors.Is(f.Err, errDisk) {
		t.Errorf("failure = %+v", f)
	}
	if report.AllUpstreamFailed() {
		t.Error("persistence failure must not count as upstream failure")
	}
	if report.UpstreamError() != nil {
		t.Error("UpstreamError should be nil without fetch failures")
	}
	if perr := report.PersistError(); !errors.Is(perr, errDisk) {
		t.Errorf("PersistError() = %v, want to wrap disk error", perr)
	}
	if store.coverageOf("300") == "" {
		t.Error("second interval should still be committed")
	}
}

func TestOrchestrator_CoverageErrorAborts(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	store.coverageErr = errors.New("connection refused")

	_, err := NewOrchestrator(store, feed, nil).Fill(context.Background(), dr("2024-01-01", "2024-01-03"))
	if err == nil {
		t.Fatal("expected error")
	}
	checkIntEqual(t, "upstream calls", feed.callCount(), 0)
}

func TestOrchestrator_ConcurrentIntervalsKeepOrder(t *testing.T) {
	t.Parallel()

	store, feed := newMemStore(), newFakeFeed()
	var seed []models.AsteroidRecord
	// Cover every even day so each odd day is its own interval.
	for i := 0; i < 20; i++ {
		day := models.MustParseDate("2024-03-01").AddDays(i)
		if i%2 == 0 {
			seed = append(seed, models.AsteroidRecord{NeoReferenceID: "seed-" + day.String(), RangeStart: day, RangeEnd: day})
			continue
		}
		feed.add("neo-"+day.String(), day.String())
		if i%5 == 0 {
			feed.fail[day.String()] = errSimulated
		}
	}
	_, _ = store.UpsertAsteroids(context.Background(), seed)

	report, err := NewOrchestrator(store, feed, &config.SyncConfig{Concurrency: 4}).
		Fill(context.Background(), dr("2024-03-01", "2024-03-20"))
	checkNoError(t, err)

	checkIntEqual(t, "intervals", len(report.Intervals), 10)
	checkIntEqual(t, "upstream calls", feed.callCount(), 10)
	checkIntEqual(t, "failures", len(report.Failures), 2)
	checkIntEqual(t, "Upserted", report.Upserted, 8)

	for i := 1; i < len(report.Failures); i++ {
		if !report.Failures[i-1].Interval.Start.Before(report.Failures[i].Interval.Start) {
			t.Errorf("failures out of interval order: %v", report.Failures)
		}
	}
}

func TestNewOrchestrator_Concurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  *config.SyncConfig
		want int
	}{
		{nil, 1},
		{&config.SyncConfig{Concurrency: 0}, 1},
		{&config.SyncConfig{Concurrency: 1}, 1},
		{&config.SyncConfig{Concurrency: 8}, 8},
	}
	for _, tt := range tests {
		if got := NewOrchestrator(newMemStore(), newFakeFeed(), tt.cfg).concurrency; got != tt.want {
			t.Errorf("concurrency(%+v) = %d, want %d", tt.cfg, got, tt.want)
		}
	}
}
