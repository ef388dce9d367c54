// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/neowatch/internal/models"
	"github.com/tomtom215/neowatch/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
// This includes newlines, carriage returns, tabs, and other control characters that could
// allow attackers to forge log entries or corrupt log files.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// parseDateRange validates the startDate/endDate query parameters. The
// returned error is a *validation.RequestValidationError, ready for
// handleServiceError.
func parseDateRange(r *http.Request, maxDays int) (models.DateRange, error) {
	q := r.URL.Query()
	req := validation.DateRangeRequest{
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		MaxDays:   maxDays,
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return models.DateRange{}, verr
	}
	return req.DateRange()
}

// parseNeoID validates the {id} path parameter.
func parseNeoID(raw string) (string, error) {
	req := validation.NeoIDRequest{ID: strings.TrimSpace(raw)}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return "", verr
	}
	return req.ID, nil
}
