// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"errors"
	"fmt"

	"github.com/tomtom215/neowatch/internal/models"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a feed call
// without contacting NeoWs.
var ErrCircuitOpen = errors.New("neows circuit breaker is open")

// UpstreamFetchError reports that the feed for Interval could not be
// retrieved. Err is the transport, status or decode error underneath.
type UpstreamFetchError struct {
	Interval models.DateRange
	Err      error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch neows feed %s: %v", e.Interval, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// Stage names the step at which an interval failed.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StagePersist Stage = "persist"
)

// IntervalFailure is one skipped interval in a FillReport.
type IntervalFailure struct {
	Interval models.DateRange
	Stage    Stage
	Err      error
}

func (f IntervalFailure) Error() string {
	return fmt.Sprintf("interval %s failed at %s: %v", f.Interval, f.Stage, f.Err)
}
