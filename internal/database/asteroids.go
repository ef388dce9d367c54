// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/neowatch/internal/metrics"
	"github.com/tomtom215/neowatch/internal/models"
)

// Coverage returns the distinct coverage intervals of records overlapping r,
// ordered by start. The gap calculator treats every day inside any returned
// interval as already fetched.
func (db *DB) Coverage(ctx context.Context, r models.DateRange) (ranges []models.DateRange, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(db.dialect.name, "coverage", time.Since(start), err) }()

	query := db.dialect.rebind(`
		SELECT DISTINCT range_start, range_end
		FROM asteroids
		WHERE range_start <= ? AND range_end >= ?
		ORDER BY range_start, range_end`)

	rows, err := db.conn.QueryContext(ctx, query, db.dialect.dateArg(r.End), db.dialect.dateArg(r.Start))
	if err != nil {
		return nil, &PersistenceError{Op: "coverage", Err: err}
	}
	defer closeWithLog(rows, "coverage rows")

	for rows.Next() {
		var c models.DateRange
		if err := rows.Scan(&c.Start, &c.End); err != nil {
			return nil, &PersistenceError{Op: "coverage", Err: fmt.Errorf("scan: %w", err)}
		}
		ranges = append(ranges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "coverage", Err: err}
	}
	return ranges, nil
}

// upsertSQL renders the per-row upsert. The conflict branch overwrites every
// mutable field and only ever widens the coverage interval.
func (db *DB) upsertSQL() string {
	d := db.dialect
	placeholders := "?"
	for i := 1; i < asteroidColumnCount; i++ {
		placeholders += ", ?"
	}
	return d.rebind(fmt.Sprintf(`
		INSERT INTO asteroids (%s)
		VALUES (%s)
		ON CONFLICT (neo_reference_id) DO UPDATE SET
			id = EXCLUDED.id,
			name = EXCLUDED.name,
			absolute_magnitude_h = EXCLUDED.absolute_magnitude_h,
			estimated_diameter_min = EXCLUDED.estimated_diameter_min,
			estimated_diameter_max = EXCLUDED.estimated_diameter_max,
			average_diameter = EXCLUDED.average_diameter,
			is_potentially_hazardous_asteroid = EXCLUDED.is_potentially_hazardous_asteroid,
			close_approach_date = EXCLUDED.close_approach_date,
			miss_distance_km = EXCLUDED.miss_distance_km,
			velocity_kmh = EXCLUDED.velocity_kmh,
			orbiting_body = EXCLUDED.orbiting_body,
			observations_used = EXCLUDED.observations_used,
			orbital_period = EXCLUDED.orbital_period,
			eccentricity = EXCLUDED.eccentricity,
			data_arc_in_days = EXCLUDED.data_arc_in_days,
			nasa_jpl_url = EXCLUDED.nasa_jpl_url,
			range_start = %[3]s(%[5]srange_start, EXCLUDED.range_start),
			range_end = %[4]s(%[5]srange_end, EXCLUDED.range_end),
			updated_at = EXCLUDED.updated_at`,
		asteroidColumns, placeholders, d.least, d.greatest, d.existing))
}

// UpsertAsteroids writes one batch in a single transaction and returns the
// number of rows written. Either every record of the batch is persisted or,
// on error, none is.
func (db *DB) UpsertAsteroids(ctx context.Context, records []models.AsteroidRecord) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery(db.dialect.name, "upsert", time.Since(start), err) }()

	if db.dialect.serializeWrites {
		db.writeMu.Lock()
		defer db.writeMu.Unlock()
	}

	now := time.Now().UTC()
	err = db.withConflictRetry(ctx, "upsert", func() error {
		return db.upsertBatch(ctx, records, now)
	})
	if err != nil {
		return 0, &PersistenceError{Op: "upsert", Err: err}
	}
	return len(records), nil
}

func (db *DB) upsertBatch(ctx context.Context, records []models.AsteroidRecord, now time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx, db.upsertSQL())
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer closeWithLog(stmt, "upsert statement")

	d := db.dialect
	for i := range records {
		rec := &records[i]
		if rec.NeoReferenceID == "" {
			return fmt.Errorf("record %d has no neo_reference_id", i)
		}
		if rec.RangeStart.IsZero() || rec.RangeEnd.IsZero() || rec.RangeStart.After(rec.RangeEnd) {
			return fmt.Errorf("record %s has invalid coverage %s..%s", rec.NeoReferenceID, rec.RangeStart, rec.RangeEnd)
		}

		_, err := stmt.ExecContext(ctx,
			rec.NeoReferenceID, rec.ID, rec.Name, rec.AbsoluteMagnitudeH,
			rec.EstimatedDiameterMin, rec.EstimatedDiameterMax, rec.AverageDiameter,
			rec.IsPotentiallyHazardous, rec.CloseApproachDate, rec.MissDistanceKm,
			rec.VelocityKmh, rec.OrbitingBody, rec.ObservationsUsed, rec.OrbitalPeriod,
			rec.Eccentricity, rec.DataArcInDays, rec.NasaJplURL,
			d.dateArg(rec.RangeStart), d.dateArg(rec.RangeEnd), d.timeArg(now),
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", rec.NeoReferenceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QueryRange returns every record whose coverage overlaps r, ordered by close
// approach date and then reference id. An empty result is not an error.
func (db *DB) QueryRange(ctx context.Context, r models.DateRange) (records []models.AsteroidRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(db.dialect.name, "query_range", time.Since(start), err) }()

	query := db.dialect.rebind(`
		SELECT ` + asteroidColumns + `
		FROM asteroids
		WHERE range_start <= ? AND range_end >= ?
		ORDER BY close_approach_date, neo_reference_id`)

	rows, err := db.conn.QueryContext(ctx, query, db.dialect.dateArg(r.End), db.dialect.dateArg(r.Start))
	if err != nil {
		return nil, &PersistenceError{Op: "query_range", Err: err}
	}
	defer closeWithLog(rows, "asteroid rows")

	records = make([]models.AsteroidRecord, 0, 64)
	for rows.Next() {
		rec, err := scanAsteroid(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "query_range", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query_range", Err: err}
	}
	return records, nil
}

// GetAsteroid returns one record by reference id, or ErrNotFound.
func (db *DB) GetAsteroid(ctx context.Context, neoReferenceID string) (rec *models.AsteroidRecord, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordDBQuery(db.dialect.name, "get", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery(db.dialect.name, "get", time.Since(start), err)
	}()

	row := db.conn.QueryRowContext(ctx,
		db.dialect.rebind(`SELECT `+asteroidColumns+` FROM asteroids WHERE neo_reference_id = ?`),
		neoReferenceID)

	r, err := scanAsteroid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return &r, nil
}

// CountAsteroids returns the number of stored records.
func (db *DB) CountAsteroids(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM asteroids`).Scan(&n); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsteroid(s rowScanner) (models.AsteroidRecord, error) {
	var (
		rec       models.AsteroidRecord
		updatedAt timestampScanner
	)
	err := s.Scan(
		&rec.NeoReferenceID, &rec.ID, &rec.Name, &rec.AbsoluteMagnitudeH,
		&rec.EstimatedDiameterMin, &rec.EstimatedDiameterMax, &rec.AverageDiameter,
		&rec.IsPotentiallyHazardous, &rec.CloseApproachDate, &rec.MissDistanceKm,
		&rec.VelocityKmh, &rec.OrbitingBody, &rec.ObservationsUsed, &rec.OrbitalPeriod,
		&rec.Eccentricity, &rec.DataArcInDays, &rec.NasaJplURL,
		&rec.RangeStart, &rec.RangeEnd, &updatedAt,
	)
	if err != nil {
		return rec, err
	}
	rec.UpdatedAt = updatedAt.t
	return rec, nil
}

// timestampScanner reads TIMESTAMP/TIMESTAMPTZ (time.Time) as well as the
// RFC 3339 text SQLite stores.
type timestampScanner struct {
	t time.Time
}

func (ts *timestampScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.t = time.Time{}
	case time.Time:
		ts.t = v.UTC()
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

func (ts *timestampScanner) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.t = t.UTC()
	return nil
}
