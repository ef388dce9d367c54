// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package sync keeps the Range Store filled from the NASA NeoWs feed.

A request for a date range only reaches the upstream API for the days the
store has never seen. The package computes those days, merges them into
contiguous intervals and fetches each interval once, so repeated requests
for the same range cost a single round of upstream calls.

Key Components:

  - MissingDates: days of a range not contained in any stored coverage interval
  - MergeDates: collapses sorted days into contiguous intervals
  - NeoWsClient: feed client with outbound rate limiting, 429 backoff and
    window chunking (NeoWs rejects windows longer than 7 days)
  - CircuitBreakerClient: gobreaker wrapper around any FeedFetcher
  - NormalizeFeed: the single place where upstream fields become an
    AsteroidRecord (unit selection, string parsing, first approach only)
  - Orchestrator: gap fill for one request, interval by interval
  - Manager: optional background prefetch of a window around today

Failure Model:

Each interval is fetched, normalized and upserted on its own. An upstream
failure or a failed transaction for one interval is recorded in the
FillReport and the fill moves on; already committed intervals stay
committed. Only a failed coverage read aborts a fill.

Usage Example:

	client := sync.NewCircuitBreakerClient(sync.NewNeoWsClient(&cfg.NASA))
	orch := sync.NewOrchestrator(db, client, &cfg.Sync)

	report, err := orch.Fill(ctx, r)
	if err != nil {
	    return err // coverage read failed
	}
	for _, f := range report.Failures {
	    logging.Warn().Str("interval", f.Interval.String()).Err(f.Err).Msg("Interval skipped")
	}

Thread Safety:

NeoWsClient, CircuitBreakerClient and Orchestrator are safe for concurrent
use. Concurrent fills of overlapping ranges may fetch the same interval
twice; the upsert is idempotent so the stored result is the same.
*/
package sync
