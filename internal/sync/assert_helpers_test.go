// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"strings"
	"testing"

	"github.com/tomtom215/neowatch/internal/models"
)

// Test assertion helpers with "check" prefix.
// Using t.Helper() ensures error messages point to the calling line.

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkFloatEqual(t *testing.T, fieldName string, got, want float64) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

// checkDates compares dates against YYYY-MM-DD strings.
func checkDates(t *testing.T, got []models.Date, want ...string) {
	t.Helper()
	gotStr := make([]string, len(got))
	for i, d := range got {
		gotStr[i] = d.String()
	}
	if strings.Join(gotStr, ",") != strings.Join(want, ",") {
		t.Errorf("dates: expected %v, got %v", want, gotStr)
	}
}

// checkIntervals compares intervals against "start..end" strings.
func checkIntervals(t *testing.T, got []models.DateRange, want ...string) {
	t.Helper()
	gotStr := make([]string, len(got))
	for i, r := range got {
		gotStr[i] = r.String()
	}
	if strings.Join(gotStr, ",") != strings.Join(want, ",") {
		t.Errorf("intervals: expected %v, got %v", want, gotStr)
	}
}

// dr builds a DateRange from two YYYY-MM-DD strings.
func dr(start, end string) models.DateRange {
	return models.DateRange{Start: models.MustParseDate(start), End: models.MustParseDate(end)}
}
