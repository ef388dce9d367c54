// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/neowatch/internal/logging"
	"github.com/tomtom215/neowatch/internal/models"
)

// NormalizeFeed converts a feed response into AsteroidRecords.
//
// Each record's coverage interval is the feed date key it was listed under.
// An object listed under several keys of the same feed becomes one record
// whose coverage spans all of them; its other fields come from the earliest
// key and later listings are dropped. Entries with an unparseable date key or no identifier are dropped.
// Records are returned sorted by coverage start, then reference id.
func NormalizeFeed(feed *models.NeoWsFeed) []models.AsteroidRecord {
	if feed == nil || len(feed.NearEarthObjects) == 0 {
		return nil
	}

	keys := make([]string, 0, len(feed.NearEarthObjects))
	for k := range feed.NearEarthObjects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]models.AsteroidRecord, 0, feed.ElementCount)
	index := make(map[string]int, feed.ElementCount)

	for _, key := range keys {
		day, err := models.ParseDate(key)
		if err != nil {
			logging.Warn().Str("date_key", key).Msg("Skipping feed entries under invalid date key")
			continue
		}

		for i := range feed.NearEarthObjects[key] {
			rec, ok := NormalizeObject(&feed.NearEarthObjects[key][i], day)
			if !ok {
				logging.Debug().Str("date_key", key).Msg("Skipping feed entry without identifier")
				continue
			}
			if at, seen := index[rec.NeoReferenceID]; seen {
				records[at].Widen(rec.Coverage())
				continue
			}
			index[rec.NeoReferenceID] = len(records)
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].RangeStart.Equal(records[j].RangeStart) {
			return records[i].RangeStart.Before(records[j].RangeStart)
		}
		return records[i].NeoReferenceID < records[j].NeoReferenceID
	})
	return records
}

// NormalizeObject maps one feed entry listed under day. It reports false
// when the entry carries neither neo_reference_id nor id.
//
// Diameters are taken in meters, falling back to kilometers*1000. Only the
// first close-approach event is used. Numeric strings that do not parse
// become 0, and a missing approach or orbit leaves its fields at zero values.
func NormalizeObject(obj *models.NeoWsObject, day models.Date) (models.AsteroidRecord, bool) {
	refID := strings.TrimSpace(obj.NeoReferenceID)
	if refID == "" {
		refID = strings.TrimSpace(obj.ID)
	}
	if refID == "" {
		return models.AsteroidRecord{}, false
	}

	rec := models.AsteroidRecord{
		NeoReferenceID:         refID,
		ID:                     obj.ID,
		Name:                   obj.Name,
		AbsoluteMagnitudeH:     finite(obj.AbsoluteMagnitudeH),
		IsPotentiallyHazardous: obj.IsPotentiallyHazardousAsteroid,
		NasaJplURL:             obj.NasaJplURL,
		RangeStart:             day,
		RangeEnd:               day,
	}
	if rec.ID == "" {
		rec.ID = refID
	}

	switch d := obj.EstimatedDiameter; {
	case d.Meters != nil:
		rec.SetDiameter(finite(d.Meters.Min), finite(d.Meters.Max))
	case d.Kilometers != nil:
		rec.SetDiameter(finite(d.Kilometers.Min)*1000, finite(d.Kilometers.Max)*1000)
	}

	if len(obj.CloseApproachData) > 0 {
		approach := obj.CloseApproachData[0]
		rec.CloseApproachDate = approach.CloseApproachDate
		rec.MissDistanceKm = parseNumber(approach.MissDistance.Kilometers)
		rec.VelocityKmh = parseNumber(approach.RelativeVelocity.KilometersPerHour)
		rec.OrbitingBody = approach.OrbitingBody
	}

	if orbit := obj.OrbitalData; orbit != nil {
		rec.ObservationsUsed = orbit.ObservationsUsed
		rec.DataArcInDays = orbit.DataArcInDays
		rec.OrbitalPeriod = parseNumber(orbit.OrbitalPeriod)
		rec.Eccentricity = parseNumber(orbit.Eccentricity)
	}

	return rec, true
}

// parseNumber parses a NeoWs numeric string. Anything unparseable or
// non-finite becomes 0.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
