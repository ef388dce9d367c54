// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

// Package config loads NeoWatch configuration with Koanf v2.
//
// Configuration Loading Order (highest priority last):
//  1. Defaults: defaultConfig()
//  2. Config File: optional YAML (config.yaml, or the path in CONFIG_PATH)
//  3. Environment Variables: mapped explicitly in envTransformFunc
//
// The resulting *Config is built once in main and passed by pointer into the
// components that need it. It is never read from the environment again and
// is safe for concurrent reads.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	client := sync.NewNeoWsClient(&cfg.NASA)
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	NASA     NASAConfig     `koanf:"nasa"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// NASAConfig configures the NeoWs upstream client.
//
// Environment Variables:
//   - NASA_BASE_URL: API root (default: https://api.nasa.gov)
//   - NASA_API_KEY: api.nasa.gov key (default: DEMO_KEY, heavily rate limited)
//   - NASA_REQUEST_TIMEOUT: per-call timeout, covering all retries (default: 30s)
//   - NASA_MAX_RETRIES: retries on 429/5xx (default: 3)
//   - NASA_RETRY_BASE_DELAY: first backoff step (default: 1s)
//   - NASA_REQUESTS_PER_SECOND: outbound token bucket rate (default: 2)
//   - NASA_MAX_WINDOW_DAYS: longest feed window per call (default: 7, the NeoWs limit)
type NASAConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	MaxWindowDays     int           `koanf:"max_window_days"`
}

// Database drivers accepted in DatabaseConfig.Driver.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig selects and tunes the Range Store backend.
//
// DuckDB is the default and needs no external service. PostgreSQL is the
// production option and is configured through DATABASE_URL, matching the
// variable used by most hosting platforms. SQLite suits single-user installs.
//
// Environment Variables:
//   - DB_DRIVER: duckdb, postgres or sqlite (default: duckdb)
//   - DUCKDB_PATH / SQLITE_PATH: database file (default: /data/neowatch.duckdb)
//   - DATABASE_URL: PostgreSQL DSN (required when DB_DRIVER=postgres)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: DuckDB worker threads, 0 = runtime.NumCPU()
//   - DB_MAX_OPEN_CONNS: pool size, 0 = driver-specific default
//   - DB_CONN_MAX_LIFETIME: pool connection lifetime (default: 1h)
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	Path            string        `koanf:"path"`
	DSN             string        `koanf:"dsn"`
	MaxMemory       string        `koanf:"max_memory"`
	Threads         int           `koanf:"threads"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// SyncConfig controls both the request-driven gap fill and the optional
// background prefetch of a rolling window around today.
//
// Environment Variables:
//   - SYNC_ENABLED: run the background prefetch (default: false)
//   - SYNC_INTERVAL: prefetch period (default: 6h)
//   - SYNC_LOOKBACK_DAYS: days before today to keep filled (default: 7)
//   - SYNC_LOOKAHEAD_DAYS: days after today to keep filled (default: 7)
//   - SYNC_CONCURRENCY: intervals fetched in parallel, 1 = sequential (default: 1)
type SyncConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Interval      time.Duration `koanf:"interval"`
	LookbackDays  int           `koanf:"lookback_days"`
	LookaheadDays int           `koanf:"lookahead_days"`
	Concurrency   int           `koanf:"concurrency"`
}

// ServerConfig holds HTTP server settings. PORT is honoured alongside
// HTTP_PORT because PaaS hosts inject it.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig bounds what a single request may ask for.
type APIConfig struct {
	// MaxRangeDays caps endDate-startDate+1. A gap fill over the full range
	// may cost one upstream call per MaxWindowDays.
	MaxRangeDays int `koanf:"max_range_days"`
}

// SecurityConfig holds CORS and inbound rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
