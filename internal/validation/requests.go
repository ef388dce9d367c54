// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package validation

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/neowatch/internal/models"
)

// minDate is the earliest accepted date parameter.
const minDate = "0001-01-02"

// DateRangeRequest carries the startDate/endDate query parameters of the
// /api/neos routes. Both bounds are inclusive.
type DateRangeRequest struct {
	StartDate string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"required,datetime=2006-01-02"`

	// MaxDays caps the inclusive length of the range. Zero disables the check.
	MaxDays int `query:"-" validate:"-"`
}

// DateRange converts a validated request into a models.DateRange.
func (r *DateRangeRequest) DateRange() (models.DateRange, error) {
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := models.ParseDate(r.EndDate)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("endDate: %w", err)
	}
	return models.NewDateRange(start, end)
}

// dateRangeStructLevel runs after the field rules. It only reports ordering
// and length problems once both dates parse, so a malformed date yields a
// single datetime error instead of a cascade.
func dateRangeStructLevel(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(DateRangeRequest)
	if !ok {
		return
	}

	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return
	}

	// 0001-01-01 is well formed but is the zero time, which a DateRange
	// treats as unset.
	zero := false
	if start.IsZero() {
		sl.ReportError(req.StartDate, "startDate", "StartDate", "mindate", minDate)
		zero = true
	}
	if end.IsZero() {
		sl.ReportError(req.EndDate, "endDate", "EndDate", "mindate", minDate)
		zero = true
	}
	if zero {
		return
	}

	if end.Before(start) {
		sl.ReportError(req.EndDate, "endDate", "EndDate", "datefrom", "startDate")
		return
	}

	if req.MaxDays > 0 && start.DaysUntil(end)+1 > req.MaxDays {
		sl.ReportError(req.EndDate, "endDate", "EndDate", "maxrange", strconv.Itoa(req.MaxDays))
	}
}

// NeoIDRequest carries the {id} path parameter of /api/neo/{id}. NeoWs
// reference ids are numeric strings.
type NeoIDRequest struct {
	ID string `query:"id" validate:"required,numeric,max=20"`
}
