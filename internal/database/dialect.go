// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/neowatch/internal/config"
	"github.com/tomtom215/neowatch/internal/models"
)

// dialect captures every SQL difference between the supported backends.
type dialect struct {
	name       string
	driverName string // database/sql driver name

	// Column types.
	dateType      string
	timestampType string
	textType      string
	doubleType    string

	// least/greatest are the two-argument scalar min/max functions.
	least    string
	greatest string

	// existing qualifies a column reference to the current row inside
	// ON CONFLICT DO UPDATE SET expressions.
	existing string

	// numbered placeholders ($1, $2) instead of ?.
	numbered bool

	// serializeWrites takes DB.writeMu around write transactions.
	serializeWrites bool

	// dateArg and timeArg convert values to what the driver binds natively.
	dateArg func(models.Date) any
	timeArg func(time.Time) any
}

var dialects = map[string]*dialect{
	config.DriverDuckDB: {
		name:            config.DriverDuckDB,
		driverName:      "duckdb",
		dateType:        "DATE",
		timestampType:   "TIMESTAMP",
		textType:        "VARCHAR",
		doubleType:      "DOUBLE",
		least:           "LEAST",
		greatest:        "GREATEST",
		existing:        "",
		serializeWrites: true,
		dateArg:         func(d models.Date) any { return d.Time() },
		timeArg:         func(t time.Time) any { return t.UTC() },
	},
	config.DriverPostgres: {
		name:          config.DriverPostgres,
		driverName:    "postgres",
		dateType:      "DATE",
		timestampType: "TIMESTAMPTZ",
		textType:      "TEXT",
		doubleType:    "DOUBLE PRECISION",
		least:         "LEAST",
		greatest:      "GREATEST",
		existing:      "asteroids.",
		numbered:      true,
		dateArg:       func(d models.Date) any { return d.String() },
		timeArg:       func(t time.Time) any { return t.UTC() },
	},
	config.DriverSQLite: {
		name:            config.DriverSQLite,
		driverName:      "sqlite",
		dateType:        "TEXT", // ISO dates compare correctly as text
		timestampType:   "TEXT",
		textType:        "TEXT",
		doubleType:      "REAL",
		least:           "MIN", // scalar form with two arguments
		greatest:        "MAX",
		existing:        "asteroids.",
		serializeWrites: true,
		dateArg:         func(d models.Date) any { return d.String() },
		timeArg:         func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
	},
}

func dialectFor(driver string) (*dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL. Queries in this
// package never contain a literal ? inside strings.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
