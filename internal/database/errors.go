// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/neowatch/internal/logging"
)

// PersistenceError is returned by every Range Store operation that fails
// against the backend. Op names the operation (coverage, upsert, query_range,
// get, ping, connect).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "database " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the backend could not be reached, as opposed to
// a statement failing. The API answers 503 for these.
func (e *PersistenceError) Unavailable() bool {
	return isConnectionError(e.Err)
}

// IsUnavailable reports whether err wraps a PersistenceError caused by an
// unreachable backend.
func IsUnavailable(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr) && perr.Unavailable()
}

// ErrNotFound is returned by GetAsteroid for an unknown reference id.
var ErrNotFound = errors.New("asteroid not found")

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}

// rollbackQuietly is deferred right after BeginTx. After Commit it returns
// sql.ErrTxDone, which is expected.
func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Failed to roll back transaction")
	}
}
