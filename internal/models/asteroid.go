// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package models

import "time"

// AsteroidRecord is the canonical, normalized snapshot of one near-Earth
// object as persisted in the asteroids table and served to the dashboard.
//
// Every field is populated: optional upstream values that are missing are
// stored as 0 or "" so consumers never see null. Diameters are in meters.
//
// RangeStart and RangeEnd form the coverage interval: the feed dates that
// produced or confirmed this record. An upsert only ever widens it.
type AsteroidRecord struct {
	NeoReferenceID         string    `json:"neo_reference_id"`
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	AbsoluteMagnitudeH     float64   `json:"absolute_magnitude_h"`
	EstimatedDiameterMin   float64   `json:"estimated_diameter_min"`
	EstimatedDiameterMax   float64   `json:"estimated_diameter_max"`
	AverageDiameter        float64   `json:"average_diameter"`
	IsPotentiallyHazardous bool      `json:"is_potentially_hazardous_asteroid"`
	CloseApproachDate      string    `json:"close_approach_date"`
	MissDistanceKm         float64   `json:"miss_distance_km"`
	VelocityKmh            float64   `json:"velocity_kmh"`
	OrbitingBody           string    `json:"orbiting_body"`
	ObservationsUsed       int       `json:"observations_used"`
	OrbitalPeriod          float64   `json:"orbital_period"`
	Eccentricity           float64   `json:"eccentricity"`
	DataArcInDays          int       `json:"data_arc_in_days"`
	NasaJplURL             string    `json:"nasa_jpl_url"`
	RangeStart             Date      `json:"date_range_start"`
	RangeEnd               Date      `json:"date_range_end"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Coverage returns the record's coverage interval.
func (a *AsteroidRecord) Coverage() DateRange {
	return DateRange{Start: a.RangeStart, End: a.RangeEnd}
}

// SetDiameter stores min/max in meters and recomputes the average.
func (a *AsteroidRecord) SetDiameter(minMeters, maxMeters float64) {
	a.EstimatedDiameterMin = minMeters
	a.EstimatedDiameterMax = maxMeters
	a.AverageDiameter = (minMeters + maxMeters) / 2
}

// Widen merges other into the coverage interval of a.
func (a *AsteroidRecord) Widen(other DateRange) {
	a.RangeStart = MinDate(a.RangeStart, other.Start)
	a.RangeEnd = MaxDate(a.RangeEnd, other.End)
}
