// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package services provides suture.Service wrappers for NeoWatch components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService runs an *http.Server: ListenAndServe in a goroutine,
Shutdown with a bounded timeout when the context ends. http.ErrServerClosed
is not treated as a failure.

SyncService runs the background prefetch manager (sync.Manager): Start on
entry, Stop on context cancellation. A Start error is returned so the
supervisor restarts the service with backoff.

Both implement fmt.Stringer so supervisor events name the service.
*/
package services
