// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package main

import (
	"net/http"
	"runtime"
	"time"

	"github.com/tomtom215/neowatch/internal/api"
	"github.com/tomtom215/neowatch/internal/catalog"
	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/database"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/metrics"
	"github.com/tomtom215/neowatch/internal/supervisor"
	"github.com/tomtom215/neowatch/internal/supervisor/services"
	intsync "github.com/tomtom215/neowatch/internal/sync"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds the wired components of one server process.
type app struct {
	server  *http.Server
	manager *intsync.Manager // nil unless prefetch is enabled
	breaker *intsync.CircuitBreakerClient
	tree    *supervisor.SupervisorTree
}

// newApp wires every component on top of an open database.
func newApp(cfg *config.Config, db *database.DB) (*app, error) {
	breaker := intsync.NewCircuitBreakerClient(intsync.NewNeoWsClient(&cfg.NASA))
	orchestrator := intsync.NewOrchestrator(db, breaker, &cfg.Sync)
	svc := catalog.NewService(db, orchestrator)

	opts := []api.HandlerOption{
		api.WithBreaker(breaker),
		api.WithMaxRangeDays(cfg.API.MaxRangeDays),
		api.WithVersion(version),
		api.WithRecordCounter(db),
	}

	var manager *intsync.Manager
	if cfg.Sync.Enabled {
		manager = intsync.NewManager(orchestrator, &cfg.Sync)
		opts = append(opts, api.WithSyncStatus(manager))
	}

	handler := api.NewHandler(svc, db, opts...)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	if manager != nil {
		tree.AddSyncService(services.NewSyncService(manager))
		logging.Info().
			Str("window", manager.PrefetchRange().String()).
			Dur("interval", cfg.Sync.Interval).
			Msg("Prefetch manager added to supervisor tree")
	} else {
		logging.Info().Msg("Background prefetch disabled (SYNC_ENABLED=false)")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	metrics.AppInfo.WithLabelValues(version, runtime.Version(), db.Driver()).Set(1)

	return &app{
		server:  server,
		manager: manager,
		breaker: breaker,
		tree:    tree,
	}, nil
}
