// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

// Package testinfra provides shared test infrastructure.
//
// # Mock NeoWs Server
//
// MockNeoWsServer is an httptest server speaking the NeoWs feed protocol. It
// records every request and can be told to fail or rate limit specific
// windows, so sync and API tests exercise the real client end to end:
//
//	neows := testinfra.NewMockNeoWsServer(t)
//	neows.AddObject("2024-01-01", testinfra.NeoObject("3542519", "(2010 PK9)", "2024-01-01"))
//	client := sync.NewNeoWsClient(&config.NASAConfig{BaseURL: neows.URL(), ...})
//
// # PostgreSQL Container (integration build tag)
//
// NewPostgresContainer starts a disposable PostgreSQL instance through
// testcontainers-go for the Range Store integration tests:
//
//	go test -tags integration ./internal/database/...
//
// These tests require Docker and are skipped gracefully when it is missing.
package testinfra
