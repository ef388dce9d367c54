// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
manager.go - Background Prefetch Lifecycle

The Manager keeps a rolling window around today filled so the dashboard's
default view never waits on NeoWs. It runs one fill at startup and then one
per SYNC_INTERVAL, all through the same Orchestrator used by requests.

Lifecycle Methods:
  - NewManager(): wire the orchestrator and sync configuration
  - Start(): initial fill plus the periodic loop
  - Stop(): signal the loop and wait for an in-flight fill to finish
  - TriggerFill(): immediate fill (mutex-protected)
  - LastSyncTime() / LastReport(): state of the last completed fill

Thread Safety:
  - syncMu: Prevents overlapping fills
  - mu: Protects running, lastSync and lastReport
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/models"
)

// Manager runs the background prefetch.
type Manager struct {
	orchestrator *Orchestrator
	cfg          *config.SyncConfig
	today        func() models.Date

	mu         sync.RWMutex
	running    bool
	lastSync   time.Time
	lastReport *FillReport

	syncMu   sync.Mutex
	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewManager creates a stopped manager.
func NewManager(orchestrator *Orchestrator, cfg *config.SyncConfig) *Manager {
	logging.Info().
		Bool("enabled", cfg.Enabled).
		Dur("interval", cfg.Interval).
		Int("lookback_days", cfg.LookbackDays).
		Int("lookahead_days", cfg.LookaheadDays).
		Int("concurrency", cfg.Concurrency).
		Msg("Sync manager config loaded")

	return &Manager{
		orchestrator: orchestrator,
		cfg:          cfg,
		today:        models.Today,
	}
}

// Start launches the initial fill and the periodic loop. The loop ends when
// ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	stop := make(chan struct{})
	m.stopChan = stop
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	logging.Info().Str("window", m.PrefetchRange().String()).Msg("Starting sync manager...")

	m.wg.Add(1)
	go m.syncLoop(loopCtx, stop)

	return nil
}

// Stop ends the loop, cancelling an in-flight fill, and waits for it. It is
// an error to stop a manager that is not running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.cancel()
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// IsRunning reports whether the loop is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastSyncTime returns when the last prefetch finished, zero if none has.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastReport returns the report of the last prefetch, nil if none has run.
func (m *Manager) LastReport() *FillReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

// PrefetchRange is [today-LookbackDays, today+LookaheadDays].
func (m *Manager) PrefetchRange() models.DateRange {
	today := m.today()
	return models.DateRange{
		Start: today.AddDays(-max(m.cfg.LookbackDays, 0)),
		End:   today.AddDays(max(m.cfg.LookaheadDays, 0)),
	}
}

// TriggerFill runs a prefetch now. It waits for a fill already in progress.
func (m *Manager) TriggerFill(ctx context.Context) (*FillReport, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	return m.prefetch(ctx)
}

func (m *Manager) syncLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	if _, err := m.TriggerFill(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial prefetch failed (will retry)")
	}

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := m.TriggerFill(ctx); err != nil {
				logging.Error().Err(err).Msg("Prefetch failed")
			}
		}
	}
}

// prefetch must be called with syncMu held.
func (m *Manager) prefetch(ctx context.Context) (*FillReport, error) {
	report, err := m.orchestrator.fill(ctx, m.PrefetchRange(), TriggerPrefetch)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastReport = report
	m.mu.Unlock()

	return report, nil
}
