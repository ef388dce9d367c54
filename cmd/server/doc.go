// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package main is the entry point for the NeoWatch server.

NeoWatch caches NASA NeoWs close-approach data in a local database and serves
it over a small REST API. Requests to /api/neos/list fill missing days from
the upstream feed before answering; /api/neos answers from the local store
only. An optional background loop prefetches a rolling window around today.

# Application Architecture

	RootSupervisor ("neowatch")
	├── SyncSupervisor ("sync-layer")
	│   └── Prefetch manager (SYNC_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB (default), PostgreSQL or SQLite, migrations applied
 4. Upstream client: NeoWs feed client behind a circuit breaker
 5. Orchestrator and catalog service
 6. Prefetch manager (optional)
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: Chi router with middleware stack

# Configuration

Priority: Environment variables > Config file > Defaults

	# Upstream
	NASA_API_KEY=DEMO_KEY        # api.nasa.gov key
	NASA_BASE_URL=https://api.nasa.gov

	# Storage
	DB_DRIVER=duckdb             # duckdb, postgres or sqlite
	DB_PATH=/data/neowatch.duckdb
	DB_DSN=                      # postgres connection string

	# Server
	PORT=5000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Background prefetch
	SYNC_ENABLED=false
	SYNC_INTERVAL=6h

See internal/config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining for SERVER_SHUTDOWN_TIMEOUT) and the prefetch manager, then
the database is closed.
*/
package main
