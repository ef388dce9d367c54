// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

// Package database is the Range Store: the persisted set of asteroid records
// keyed by neo_reference_id, each carrying the coverage interval of feed dates
// that produced it.
//
// # Backends
//
// The same SQL runs on three backends selected by DB_DRIVER:
//   - duckdb (default): embedded, github.com/duckdb/duckdb-go/v2
//   - postgres: github.com/lib/pq, configured with DATABASE_URL
//   - sqlite: modernc.org/sqlite, pure Go
//
// Backend differences (placeholders, LEAST/GREATEST, column types, how dates
// are bound) live in a dialect value chosen at startup. Queries are written
// once with ? placeholders and rebound for PostgreSQL.
//
// # Files
//
//   - database.go: lifecycle (New, Ping, Close)
//   - dialect.go: per-backend SQL differences
//   - database_schema.go: DDL for the asteroids table
//   - migrations.go: versioned schema_migrations
//   - database_connection.go: pool tuning, conflict and connection error detection
//   - asteroids.go: Coverage, UpsertAsteroids, QueryRange, GetAsteroid
//   - errors.go: PersistenceError and close helpers
//
// # Write Semantics
//
// UpsertAsteroids writes one batch (one merged interval) in one transaction.
// Each row is an atomic INSERT ... ON CONFLICT (neo_reference_id) DO UPDATE:
// mutable fields are overwritten, and the coverage interval is widened with
// LEAST/GREATEST so concurrent or repeated fills never shrink it. A failed
// batch rolls back completely.
//
// # Thread Safety
//
// DB is safe for concurrent use. Writes are serialized per DB for DuckDB and
// SQLite, whose single-writer engines would otherwise surface conflicts.
package database
