// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/logging"
)

// DB wraps the SQL connection pool of the configured backend.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect *dialect

	// writeMu serializes upsert transactions on single-writer engines.
	writeMu sync.Mutex

	// retry policy for DuckDB transaction conflicts
	maxConflictRetries int
	conflictBaseDelay  time.Duration
}

// New opens the configured backend, tunes the pool and applies migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}

	db := &DB{
		conn:               conn,
		cfg:                cfg,
		dialect:            d,
		maxConflictRetries: 3,
		conflictBaseDelay:  time.Millisecond,
	}

	db.configureConnectionPool()

	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, &PersistenceError{Op: "connect", Err: err}
	}

	if err := db.initialize(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("driver", d.name).
		Str("path", redactedLocation(cfg)).
		Msg("Range store ready")

	return db, nil
}

// buildDSN assembles the driver-specific connection string.
func buildDSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return cfg.DSN, nil

	case config.DriverSQLite:
		if err := ensureParentDir(cfg.Path); err != nil {
			return "", err
		}
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil

	default:
		if err := ensureParentDir(cfg.Path); err != nil {
			return "", err
		}
		numThreads := cfg.Threads
		if numThreads <= 0 {
			numThreads = runtime.NumCPU()
		}
		maxMemory := cfg.MaxMemory
		if maxMemory == "" {
			maxMemory = "1GB"
		}
		// Auto-install/auto-load stay off: the schema needs no extensions and
		// restricted networks would otherwise hang on first open.
		opts := fmt.Sprintf("threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
			numThreads, maxMemory)
		if isMemoryPath(cfg.Path) {
			return ":memory:?" + opts, nil
		}
		return cfg.Path + "?access_mode=read_write&" + opts, nil
	}
}

// ensureParentDir creates the directory holding a database file.
func ensureParentDir(path string) error {
	if isMemoryPath(path) {
		return nil
	}
	dbDir := filepath.Dir(path)
	if dbDir == "" || dbDir == "." {
		return nil
	}
	// 0750: owner rwx, group rx, other none (gosec G301)
	if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}
	return nil
}

func isMemoryPath(path string) bool {
	return path == "" || path == ":memory:"
}

// redactedLocation never logs PostgreSQL credentials.
func redactedLocation(cfg *config.DatabaseConfig) string {
	if cfg.Driver == config.DriverPostgres {
		return "(DATABASE_URL)"
	}
	if isMemoryPath(cfg.Path) {
		return ":memory:"
	}
	return cfg.Path
}

// initialize creates the migration table and applies pending migrations.
func (db *DB) initialize(ctx context.Context) error {
	if db.dialect.name == config.DriverSQLite && !isMemoryPath(db.cfg.Path) {
		if _, err := db.conn.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
			return fmt.Errorf("enable wal: %w", err)
		}
	}
	return db.runVersionedMigrations(ctx)
}

// Driver returns the backend name: duckdb, postgres or sqlite.
func (db *DB) Driver() string {
	return db.dialect.name
}

// Conn returns the underlying connection pool. Tests use it to inspect rows
// directly.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return &PersistenceError{Op: "ping", Err: fmt.Errorf("database connection is nil")}
	}
	if err := db.conn.PingContext(ctx); err != nil {
		return &PersistenceError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the pool. For DuckDB it first forces a CHECKPOINT so the next
// start does not have to replay the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.dialect.name == config.DriverDuckDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}

	return db.conn.Close()
}

// schemaContext bounds DDL and migration statements.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
