// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"sort"

	"github.com/tomtom215/neowatch/internal/models"
)

// MissingDates returns, in ascending order, every day of r that is not
// contained in any of the coverage intervals. With no coverage the whole
// range is missing. Coverage intervals may overlap each other and r only
// partially.
func MissingDates(r models.DateRange, coverage []models.DateRange) []models.Date {
	days := r.Days()
	if days <= 0 {
		return nil
	}

	covered := make([]bool, days)
	for _, c := range coverage {
		if !c.Overlaps(r) {
			continue
		}
		from := r.Start.DaysUntil(models.MaxDate(c.Start, r.Start))
		to := r.Start.DaysUntil(models.MinDate(c.End, r.End))
		for i := from; i <= to; i++ {
			covered[i] = true
		}
	}

	missing := make([]models.Date, 0, days)
	for i := 0; i < days; i++ {
		if !covered[i] {
			missing = append(missing, r.Start.AddDays(i))
		}
	}
	return missing
}

// MergeDates collapses dates into maximal runs of consecutive days. A new
// interval starts whenever a date is neither equal to nor exactly one day
// after the current interval's end, so duplicates are absorbed. The input
// need not be sorted and is not modified.
func MergeDates(dates []models.Date) []models.DateRange {
	if len(dates) == 0 {
		return nil
	}

	sorted := make([]models.Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]models.DateRange, 0, 1)
	current := models.DateRange{Start: sorted[0], End: sorted[0]}
	for _, d := range sorted[1:] {
		if d.Equal(current.End) || d.Equal(current.End.AddDays(1)) {
			current.End = d
			continue
		}
		intervals = append(intervals, current)
		current = models.DateRange{Start: d, End: d}
	}
	return append(intervals, current)
}
