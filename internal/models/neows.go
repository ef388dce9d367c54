// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package models

// NASA NeoWs feed wire types. Only the fields NeoWatch consumes are mapped.
// NeoWs encodes most measurements as JSON strings; they are parsed during
// normalization, not here.
//
// Reference: https://api.nasa.gov (Asteroids - NeoWs, "feed" endpoint)

// NeoWsFeed is the body of GET /neo/rest/v1/feed.
type NeoWsFeed struct {
	ElementCount     int                      `json:"element_count"`
	NearEarthObjects map[string][]NeoWsObject `json:"near_earth_objects"`
}

// NeoWsObject is one entry under a feed date key.
type NeoWsObject struct {
	ID                             string                 `json:"id"`
	NeoReferenceID                 string                 `json:"neo_reference_id"`
	Name                           string                 `json:"name"`
	NasaJplURL                     string                 `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH             float64                `json:"absolute_magnitude_h"`
	EstimatedDiameter              NeoWsEstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardousAsteroid bool                   `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData              []NeoWsCloseApproach   `json:"close_approach_data"`
	OrbitalData                    *NeoWsOrbitalData      `json:"orbital_data,omitempty"`
	IsSentryObject                 bool                   `json:"is_sentry_object"`
}

// NeoWsEstimatedDiameter holds the diameter estimate in several unit systems.
// Any of them may be absent.
type NeoWsEstimatedDiameter struct {
	Kilometers *NeoWsDiameterRange `json:"kilometers,omitempty"`
	Meters     *NeoWsDiameterRange `json:"meters,omitempty"`
	Miles      *NeoWsDiameterRange `json:"miles,omitempty"`
	Feet       *NeoWsDiameterRange `json:"feet,omitempty"`
}

// NeoWsDiameterRange is a min/max pair in one unit.
type NeoWsDiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// NeoWsCloseApproach is a single close-approach event.
type NeoWsCloseApproach struct {
	CloseApproachDate     string            `json:"close_approach_date"`
	CloseApproachDateFull string            `json:"close_approach_date_full"`
	RelativeVelocity      NeoWsVelocity     `json:"relative_velocity"`
	MissDistance          NeoWsMissDistance `json:"miss_distance"`
	OrbitingBody          string            `json:"orbiting_body"`
}

// NeoWsVelocity carries velocity strings.
type NeoWsVelocity struct {
	KilometersPerSecond string `json:"kilometers_per_second"`
	KilometersPerHour   string `json:"kilometers_per_hour"`
	MilesPerHour        string `json:"miles_per_hour"`
}

// NeoWsMissDistance carries miss distance strings.
type NeoWsMissDistance struct {
	Astronomical string `json:"astronomical"`
	Lunar        string `json:"lunar"`
	Kilometers   string `json:"kilometers"`
	Miles        string `json:"miles"`
}

// NeoWsOrbitalData is only present on lookup responses and some feed
// entries. Numeric values arrive as strings except the two counters.
type NeoWsOrbitalData struct {
	OrbitID          string `json:"orbit_id"`
	ObservationsUsed int    `json:"observations_used"`
	DataArcInDays    int    `json:"data_arc_in_days"`
	OrbitalPeriod    string `json:"orbital_period"`
	Eccentricity     string `json:"eccentricity"`
}
