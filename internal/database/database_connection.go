// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/metrics"
)

// configureConnectionPool sets connection pool parameters per backend.
func (db *DB) configureConnectionPool() {
	maxOpen := db.cfg.MaxOpenConns
	lifetime := db.cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	switch db.dialect.name {
	case config.DriverSQLite:
		// One connection: SQLite has a single writer, and an in-memory
		// database lives only as long as its connection.
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		db.conn.SetConnMaxLifetime(0)
		return
	case config.DriverPostgres:
		if maxOpen <= 0 {
			maxOpen = 10
		}
	default:
		if maxOpen <= 0 {
			maxOpen = runtime.NumCPU()
		}
	}

	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(lifetime)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
// or a SQLite busy/locked error. Both are safe to retry.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY")
}

// isConnectionError checks if an error indicates the database cannot be
// reached at all, as opposed to a failing statement.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "bad connection") ||
		strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "the database system is starting up") ||
		strings.Contains(errMsg, "no such host")
}

// withConflictRetry runs fn and retries transaction conflicts with
// exponential backoff (1ms, 2ms, 4ms with the default base delay).
func (db *DB) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < db.maxConflictRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}

		if !isTransactionConflict(err) || attempt == db.maxConflictRetries-1 {
			return err
		}

		metrics.DBTransactionRetries.WithLabelValues(db.dialect.name).Inc()
		backoff := db.conflictBaseDelay * time.Duration(1<<uint(attempt))
		logging.Ctx(ctx).Debug().
			Str("op", op).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(err).
			Msg("Transaction conflict, retrying")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
