// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package sync

import (
	"testing"

	"github.com/tomtom215/neowatch/internal/models"
	"github.com/tomtom215/neowatch/internal/testinfra"
)

func TestNormalizeObject_FullEntry(t *testing.T) {
	t.Parallel()

	obj := testinfra.NeoObject("3542519", "(2010 PK9)", "2024-01-03")
	rec, ok := NormalizeObject(&obj, models.MustParseDate("2024-01-03"))
	if !ok {
		t.Fatal("expected entry to normalize")
	}

	if rec.NeoReferenceID != "3542519" || rec.ID != "3542519" || rec.Name != "(2010 PK9)" {
		t.Errorf("identity fields = %q/%q/%q", rec.NeoReferenceID, rec.ID, rec.Name)
	}
	checkFloatEqual(t, "EstimatedDiameterMin", rec.EstimatedDiameterMin, 101.1)
	checkFloatEqual(t, "EstimatedDiameterMax", rec.EstimatedDiameterMax, 226.1)
	checkFloatEqual(t, "AverageDiameter", rec.AverageDiameter, (101.1+226.1)/2)
	checkFloatEqual(t, "MissDistanceKm", rec.MissDistanceKm, 7479893.535)
	checkFloatEqual(t, "VelocityKmh", rec.VelocityKmh, 45000)
	checkFloatEqual(t, "OrbitalPeriod", rec.OrbitalPeriod, 365.25)
	checkFloatEqual(t, "Eccentricity", rec.Eccentricity, 0.21)
	checkIntEqual(t, "ObservationsUsed", rec.ObservationsUsed, 45)
	checkIntEqual(t, "DataArcInDays", rec.DataArcInDays, 1234)
	if rec.CloseApproachDate != "2024-01-03" || rec.OrbitingBody != "Earth" {
		t.Errorf("approach = %q/%q", rec.CloseApproachDate, rec.OrbitingBody)
	}
	if rec.RangeStart.String() != "2024-01-03" || rec.RangeEnd.String() != "2024-01-03" {
		t.Errorf("coverage = %s", rec.Coverage())
	}
}

func TestNormalizeObject_Fallbacks(t *testing.T) {
	t.Parallel()

	day := models.MustParseDate("2024-01-01")

	tests := []struct {
		name   string
		mutate func(o *models.NeoWsObject)
		check  func(t *testing.T, rec models.AsteroidRecord)
	}{
		{
			name: "kilometers when meters missing",
			mutate: func(o *models.NeoWsObject) {
				o.EstimatedDiameter.Meters = nil
				o.EstimatedDiameter.Kilometers = &models.NeoWsDiameterRange{Min: 0.5, Max: 1.5}
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				checkFloatEqual(t, "min", rec.EstimatedDiameterMin, 500)
				checkFloatEqual(t, "max", rec.EstimatedDiameterMax, 1500)
				checkFloatEqual(t, "avg", rec.AverageDiameter, 1000)
			},
		},
		{
			name: "no diameter at all",
			mutate: func(o *models.NeoWsObject) {
				o.EstimatedDiameter = models.NeoWsEstimatedDiameter{}
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				checkFloatEqual(t, "avg", rec.AverageDiameter, 0)
			},
		},
		{
			name: "no close approach",
			mutate: func(o *models.NeoWsObject) {
				o.CloseApproachData = nil
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				if rec.CloseApproachDate != "" || rec.OrbitingBody != "" {
					t.Errorf("approach fields should be empty, got %q/%q", rec.CloseApproachDate, rec.OrbitingBody)
				}
				checkFloatEqual(t, "miss", rec.MissDistanceKm, 0)
				checkFloatEqual(t, "velocity", rec.VelocityKmh, 0)
			},
		},
		{
			name: "only first approach is used",
			mutate: func(o *models.NeoWsObject) {
				second := o.CloseApproachData[0]
				second.CloseApproachDate = "2031-06-01"
				second.MissDistance.Kilometers = "1"
				o.CloseApproachData = append(o.CloseApproachData, second)
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				if rec.CloseApproachDate != "2024-01-03" {
					t.Errorf("CloseApproachDate = %q, want first event", rec.CloseApproachDate)
				}
				checkFloatEqual(t, "miss", rec.MissDistanceKm, 7479893.535)
			},
		},
		{
			name: "unparseable strings become zero",
			mutate: func(o *models.NeoWsObject) {
				o.CloseApproachData[0].MissDistance.Kilometers = "far"
				o.CloseApproachData[0].RelativeVelocity.KilometersPerHour = ""
				o.OrbitalData.Eccentricity = "NaN"
				o.OrbitalData.OrbitalPeriod = " 400.5 "
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				checkFloatEqual(t, "miss", rec.MissDistanceKm, 0)
				checkFloatEqual(t, "velocity", rec.VelocityKmh, 0)
				checkFloatEqual(t, "eccentricity", rec.Eccentricity, 0)
				checkFloatEqual(t, "period", rec.OrbitalPeriod, 400.5)
			},
		},
		{
			name: "no orbital data",
			mutate: func(o *models.NeoWsObject) {
				o.OrbitalData = nil
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				checkIntEqual(t, "observations", rec.ObservationsUsed, 0)
				checkFloatEqual(t, "period", rec.OrbitalPeriod, 0)
			},
		},
		{
			name: "id used when reference id missing",
			mutate: func(o *models.NeoWsObject) {
				o.NeoReferenceID = ""
				o.ID = "2000433"
			},
			check: func(t *testing.T, rec models.AsteroidRecord) {
				if rec.NeoReferenceID != "2000433" {
					t.Errorf("NeoReferenceID = %q", rec.NeoReferenceID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obj := testinfra.NeoObject("3542519", "(2010 PK9)", "2024-01-03")
			tt.mutate(&obj)
			rec, ok := NormalizeObject(&obj, day)
			if !ok {
				t.Fatal("expected entry to normalize")
			}
			tt.check(t, rec)
		})
	}
}

func TestNormalizeObject_NoIdentifier(t *testing.T) {
	t.Parallel()

	obj := testinfra.NeoObject("", "nameless", "2024-01-01")
	if _, ok := NormalizeObject(&obj, models.MustParseDate("2024-01-01")); ok {
		t.Error("entry without id should be rejected")
	}
}

func TestNormalizeFeed(t *testing.T) {
	t.Parallel()

	feed := &models.NeoWsFeed{
		ElementCount: 5,
		NearEarthObjects: map[string][]models.NeoWsObject{
			"2024-01-02": {
				testinfra.NeoObject("200", "B", "2024-01-02"),
				testinfra.NeoObject("100", "A", "2024-01-02"),
			},
			"2024-01-01": {
				testinfra.NeoObject("300", "C", "2024-01-01"),
				testinfra.NeoObject("100", "A", "2024-01-01"),
			},
			"not-a-date": {
				testinfra.NeoObject("999", "Z", "2024-01-09"),
			},
		},
	}

	records := NormalizeFeed(feed)
	checkIntEqual(t, "records", len(records), 3)

	want := []struct{ id, start, end string }{
		{"100", "2024-01-01", "2024-01-02"},
		{"300", "2024-01-01", "2024-01-01"},
		{"200", "2024-01-02", "2024-01-02"},
	}
	for i, w := range want {
		rec := records[i]
		if rec.NeoReferenceID != w.id || rec.RangeStart.String() != w.start || rec.RangeEnd.String() != w.end {
			t.Errorf("records[%d] = %s %s, want %s %s..%s", i, rec.NeoReferenceID, rec.Coverage(), w.id, w.start, w.end)
		}
	}

	// Fields come from the first listing; later ones only widen coverage.
	if records[0].CloseApproachDate != "2024-01-01" {
		t.Errorf("duplicate object should keep first listing, got approach %q", records[0].CloseApproachDate)
	}
}

func TestNormalizeFeed_Empty(t *testing.T) {
	t.Parallel()

	if got := NormalizeFeed(nil); len(got) != 0 {
		t.Errorf("nil feed: got %d records", len(got))
	}
	if got := NormalizeFeed(&models.NeoWsFeed{}); len(got) != 0 {
		t.Errorf("empty feed: got %d records", len(got))
	}
}

func TestClampCoverage(t *testing.T) {
	t.Parallel()

	in := []models.AsteroidRecord{
		{NeoReferenceID: "a", RangeStart: models.MustParseDate("2023-12-31"), RangeEnd: models.MustParseDate("2024-01-02")},
		{NeoReferenceID: "b", RangeStart: models.MustParseDate("2024-02-01"), RangeEnd: models.MustParseDate("2024-02-01")},
	}
	out := clampCoverage(in, dr("2024-01-01", "2024-01-05"))

	checkIntEqual(t, "kept", len(out), 1)
	if got := out[0].Coverage().String(); got != "2024-01-01..2024-01-02" {
		t.Errorf("clamped coverage = %s", got)
	}
}
