// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

/*
Package models defines the data structures shared across NeoWatch.

Model Categories:

Storage and API models:
  - AsteroidRecord: one normalized near-Earth object with its coverage interval
  - Date: a calendar day (YYYY-MM-DD) with no time or zone component
  - DateRange: an inclusive span of Dates

Upstream models (NASA NeoWs /feed):
  - NeoWsFeed: the feed envelope, objects keyed by date
  - NeoWsObject: one object as NeoWs reports it, with optional nested data
  - NeoWsCloseApproach, NeoWsOrbitalData and the diameter structs

NeoWs models mirror the upstream JSON and are never persisted. The sync
package normalizes them into AsteroidRecord once, at the boundary.

JSON Serialization:

Field names follow snake_case to match the NeoWs wire format and the
dashboard's expectations. Date marshals as a "YYYY-MM-DD" string and scans
from DATE, TIMESTAMP or TEXT columns.

Thread Safety:

Model values carry no internal synchronization. Callers sharing a value
across goroutines must copy it or guard it.
*/
package models
