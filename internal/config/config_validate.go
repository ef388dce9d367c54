// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that configuration is complete and within bounds. Error
// messages name the environment variable to change.
func (c *Config) Validate() error {
	if err := c.validateNASA(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateNASA() error {
	if c.NASA.BaseURL == "" {
		return fmt.Errorf("NASA_BASE_URL is required")
	}
	if err := validateHTTPURL(c.NASA.BaseURL, "NASA_BASE_URL"); err != nil {
		return fmt.Errorf("NASA_BASE_URL is invalid: %w", err)
	}
	if c.NASA.APIKey == "" {
		return fmt.Errorf("NASA_API_KEY is required (use DEMO_KEY for evaluation)")
	}
	if c.NASA.RequestTimeout <= 0 {
		return fmt.Errorf("NASA_REQUEST_TIMEOUT must be positive")
	}
	if c.NASA.MaxRetries < 0 || c.NASA.MaxRetries > 10 {
		return fmt.Errorf("NASA_MAX_RETRIES must be between 0 and 10")
	}
	if c.NASA.RetryBaseDelay < 0 {
		return fmt.Errorf("NASA_RETRY_BASE_DELAY must not be negative")
	}
	if c.NASA.RequestsPerSecond <= 0 {
		return fmt.Errorf("NASA_REQUESTS_PER_SECOND must be positive")
	}
	// NeoWs rejects feed windows longer than 7 days.
	if c.NASA.MaxWindowDays < 1 || c.NASA.MaxWindowDays > 7 {
		return fmt.Errorf("NASA_MAX_WINDOW_DAYS must be between 1 and 7")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB, DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH (or SQLITE_PATH) is required when DB_DRIVER=%s", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of: duckdb, postgres, sqlite")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must not be negative")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Concurrency < 1 || c.Sync.Concurrency > 16 {
		return fmt.Errorf("SYNC_CONCURRENCY must be between 1 and 16")
	}
	if !c.Sync.Enabled {
		return nil
	}
	if c.Sync.Interval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m")
	}
	if c.Sync.LookbackDays < 0 || c.Sync.LookaheadDays < 0 {
		return fmt.Errorf("SYNC_LOOKBACK_DAYS and SYNC_LOOKAHEAD_DAYS must not be negative")
	}
	if c.Sync.LookbackDays+c.Sync.LookaheadDays+1 > c.API.MaxRangeDays {
		return fmt.Errorf("SYNC_LOOKBACK_DAYS + SYNC_LOOKAHEAD_DAYS must fit within API_MAX_RANGE_DAYS")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxRangeDays < 1 {
		return fmt.Errorf("API_MAX_RANGE_DAYS must be at least 1")
	}
	return nil
}

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed. main logs a warning
// for this in production.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports whether ENVIRONMENT is production or prod.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
