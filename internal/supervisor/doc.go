// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package supervisor runs NeoWatch's long-lived components under a suture v4
supervisor tree.

The tree has two layers below the root:

	neowatch (root)
	├── sync-layer   background prefetch (sync.Manager), when enabled
	└── api-layer    HTTP server

A crash or restart loop in the sync layer does not take down the API layer;
the API keeps answering from the local store and filling gaps on demand.

Supervisor events (service failures, backoff, restarts) are logged through
sutureslog into the zerolog stream via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if cfg.Sync.Enabled {
	    tree.AddSyncService(services.NewSyncService(manager))
	}
	err = tree.Serve(ctx)

Wrappers adapting components to suture.Service live in the services
subpackage.
*/
package supervisor
