// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of *sync.Manager, the background
// prefetch loop.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService supervises the prefetch manager. The manager owns its own
// goroutines; this wrapper only sequences Start and Stop.
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService wraps manager.
//
//	manager := sync.NewManager(orchestrator, &cfg.Sync)
//	tree.AddSyncService(services.NewSyncService(manager))
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "prefetch-manager",
	}
}

// Serve implements suture.Service. A Start error is returned so suture
// restarts the service according to its backoff policy.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("prefetch manager start failed: %w", err)
	}

	<-ctx.Done()

	// Stop blocks until the in-flight prefetch, if any, has returned.
	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("prefetch manager stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *SyncService) String() string {
	return s.name
}
