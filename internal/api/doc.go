// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package api provides the HTTP REST API layer for NeoWatch.

It exposes the asteroid catalog over a small set of read-only routes built on
the Chi router. Handlers validate query parameters before any I/O, delegate to
the catalog service, and translate service errors into HTTP statuses in one
place (handleServiceError).

Routes:

	GET /api/neos?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
	    Read-only range query against the local store.

	GET /api/neos/list?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
	    Fills any missing days from NASA NeoWs, then runs the range query.

	GET /api/neo/{id}
	    A single asteroid record by NeoWs reference id.

	GET /api/health
	    Database and circuit breaker status.

	GET /metrics
	    Prometheus exposition.

Response bodies:

	200 {"asteroids": [...]}
	404 {"message": "No asteroid data found for the given date range."}
	4xx/5xx {"error": "...", "code": "..."}

Middleware Stack:

Applied to every route, in order: request id, real IP, panic recovery, CORS
(go-chi/cors), per-IP rate limiting (go-chi/httprate) and Prometheus request
metrics.

Thread Safety:

Handler and Router are immutable after construction and safe for concurrent
use. Concurrency control for gap fills lives in the sync package.
*/
package api
