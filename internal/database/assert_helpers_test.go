// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"testing"

	"github.com/tomtom215/neowatch/internal/models"
)

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkError fails the test if err is nil
func checkError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// checkCoverage checks a record's coverage interval.
func checkCoverage(t *testing.T, rec *models.AsteroidRecord, start, end string) {
	t.Helper()
	if rec.RangeStart.String() != start || rec.RangeEnd.String() != end {
		t.Errorf("%s coverage = %s..%s, want %s..%s",
			rec.NeoReferenceID, rec.RangeStart, rec.RangeEnd, start, end)
	}
}

// checkCount checks the number of stored asteroids.
func checkCount(t *testing.T, db *DB, want int64) {
	t.Helper()
	got, err := db.CountAsteroids(t.Context())
	checkNoError(t, err)
	if got != want {
		t.Errorf("CountAsteroids() = %d, want %d", got, want)
	}
}
