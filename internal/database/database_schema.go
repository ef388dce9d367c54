// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import "fmt"

// asteroidColumns is the column list shared by INSERT and SELECT, in the
// order scanAsteroid expects.
const asteroidColumns = `neo_reference_id, id, name, absolute_magnitude_h,
	estimated_diameter_min, estimated_diameter_max, average_diameter,
	is_potentially_hazardous_asteroid, close_approach_date, miss_distance_km,
	velocity_kmh, orbiting_body, observations_used, orbital_period,
	eccentricity, data_arc_in_days, nasa_jpl_url, range_start, range_end,
	updated_at`

// asteroidColumnCount must match asteroidColumns.
const asteroidColumnCount = 20

// createAsteroidsTableSQL renders the asteroids DDL for d. Every column is
// NOT NULL with a zero default: missing upstream values are stored as 0 or ''
// and never reach a consumer as null.
func createAsteroidsTableSQL(d *dialect) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS asteroids (
	neo_reference_id %[1]s PRIMARY KEY,
	id %[1]s NOT NULL DEFAULT '',
	name %[1]s NOT NULL DEFAULT '',
	absolute_magnitude_h %[2]s NOT NULL DEFAULT 0,
	estimated_diameter_min %[2]s NOT NULL DEFAULT 0,
	estimated_diameter_max %[2]s NOT NULL DEFAULT 0,
	average_diameter %[2]s NOT NULL DEFAULT 0,
	is_potentially_hazardous_asteroid BOOLEAN NOT NULL DEFAULT FALSE,
	close_approach_date %[1]s NOT NULL DEFAULT '',
	miss_distance_km %[2]s NOT NULL DEFAULT 0,
	velocity_kmh %[2]s NOT NULL DEFAULT 0,
	orbiting_body %[1]s NOT NULL DEFAULT '',
	observations_used INTEGER NOT NULL DEFAULT 0,
	orbital_period %[2]s NOT NULL DEFAULT 0,
	eccentricity %[2]s NOT NULL DEFAULT 0,
	data_arc_in_days INTEGER NOT NULL DEFAULT 0,
	nasa_jpl_url %[1]s NOT NULL DEFAULT '',
	range_start %[3]s NOT NULL,
	range_end %[3]s NOT NULL,
	updated_at %[4]s NOT NULL,
	CHECK (range_start <= range_end)
)`, d.textType, d.doubleType, d.dateType, d.timestampType)
}

// createSchemaMigrationsTableSQL renders the migration tracking table for d.
func createSchemaMigrationsTableSQL(d *dialect) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name %[1]s NOT NULL,
	description %[1]s NOT NULL DEFAULT '',
	applied_at %[2]s NOT NULL
)`, d.textType, d.timestampType)
}
