// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/neowatch/config.yaml",
	"/etc/neowatch/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. Port 5000 keeps existing
// dashboard builds working without reconfiguration.
func defaultConfig() *Config {
	return &Config{
		NASA: NASAConfig{
			BaseURL:           "https://api.nasa.gov",
			APIKey:            "DEMO_KEY",
			RequestTimeout:    30 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 2,
			MaxWindowDays:     7,
		},
		Database: DatabaseConfig{
			Driver:          DriverDuckDB,
			Path:            "/data/neowatch.duckdb",
			MaxMemory:       "1GB",
			Threads:         0,
			MaxOpenConns:    0,
			ConnMaxLifetime: time.Hour,
		},
		Sync: SyncConfig{
			Enabled:       false,
			Interval:      6 * time.Hour,
			LookbackDays:  7,
			LookaheadDays: 7,
			Concurrency:   1,
		},
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			MaxRangeDays: 366,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers defaults, an optional YAML file and environment
// variables (in that order of increasing priority) and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated strings for slice fields. Values
// that came from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored so unrelated process environment
// never leaks into the config.
var envMappings = map[string]string{
	// NASA NeoWs
	"nasa_base_url":            "nasa.base_url",
	"nasa_api_key":             "nasa.api_key",
	"nasa_request_timeout":     "nasa.request_timeout",
	"nasa_max_retries":         "nasa.max_retries",
	"nasa_retry_base_delay":    "nasa.retry_base_delay",
	"nasa_requests_per_second": "nasa.requests_per_second",
	"nasa_max_window_days":     "nasa.max_window_days",

	// Database
	"db_driver":            "database.driver",
	"duckdb_path":          "database.path",
	"sqlite_path":          "database.path",
	"database_url":         "database.dsn",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"db_max_open_conns":    "database.max_open_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",

	// Background prefetch
	"sync_enabled":        "sync.enabled",
	"sync_interval":       "sync.interval",
	"sync_lookback_days":  "sync.lookback_days",
	"sync_lookahead_days": "sync.lookahead_days",
	"sync_concurrency":    "sync.concurrency",

	// Server
	"port":                  "server.port",
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// API
	"api_max_range_days": "api.max_range_days",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
//
// Examples:
//   - NASA_API_KEY -> nasa.api_key
//   - DATABASE_URL -> database.dsn
//   - PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
