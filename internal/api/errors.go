// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/neowatch/internal/catalog"
	"github.com/tomtom215/neowatch/internal/database"
	"github.com/tomtom215/neowatch/internal/logging"
	intsync "github.com/tomtom215/neowatch/internal/sync"
	"github.com/tomtom215/neowatch/internal/validation"
)

// handleServiceError is the only place service errors become HTTP statuses.
//
//	*validation.RequestValidationError -> 400
//	catalog.ErrNoAsteroids             -> 404 {"message": ...}
//	catalog.ErrAsteroidNotFound        -> 404
//	database unavailable               -> 503
//	*sync.UpstreamFetchError           -> 500
//	*database.PersistenceError         -> 500
//	anything else                      -> 500
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	var verr *validation.RequestValidationError
	var upstreamErr *intsync.UpstreamFetchError
	var persistErr *database.PersistenceError

	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)

	case errors.Is(err, catalog.ErrNoAsteroids):
		rw.NoData()

	case errors.Is(err, catalog.ErrAsteroidNotFound):
		rw.NotFound(err.Error())

	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Request canceled by client")

	case database.IsUnavailable(err):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Database unavailable")
		rw.ServiceUnavailable("Database unavailable")

	case errors.As(err, &upstreamErr):
		log.Error().Err(err).Str("interval", upstreamErr.Interval.String()).Msg("Upstream fetch failed")
		rw.Error(http.StatusInternalServerError, ErrCodeUpstreamFailed, "Failed to fetch asteroid data from NASA NeoWs")

	case errors.As(err, &persistErr):
		log.Error().Err(err).Str("op", persistErr.Op).Msg("Database error")
		rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred")

	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled service error")
		rw.InternalError("Internal server error")
	}
}
