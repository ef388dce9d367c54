// NeoWatch - Near-Earth Object Tracker and Close-Approach Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/neowatch

package testinfra

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/neowatch/internal/models"
)

// FeedPath is the NeoWs feed endpoint served by MockNeoWsServer.
const FeedPath = "/neo/rest/v1/feed"

// FeedRequest is one captured call to the feed endpoint.
type FeedRequest struct {
	StartDate  string
	EndDate    string
	APIKey     string
	ReceivedAt time.Time
}

// MockNeoWsServer is an in-process NeoWs feed endpoint.
//
// Objects are registered per feed date. A request for a window returns every
// registered object whose date falls inside it, keyed by date, exactly like
// the real feed. Failures and rate limiting can be injected per window.
type MockNeoWsServer struct {
	server *httptest.Server

	mu             sync.Mutex
	objects        map[string][]models.NeoWsObject
	requests       []FeedRequest
	failures       map[string]int // window start_date -> HTTP status
	rateLimitCount int
	retryAfter     string
}

// NewMockNeoWsServer starts a mock server that is closed when the test ends.
func NewMockNeoWsServer(t testing.TB) *MockNeoWsServer {
	t.Helper()

	m := &MockNeoWsServer{
		objects:  make(map[string][]models.NeoWsObject),
		failures: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the base URL to use as NASA_BASE_URL.
func (m *MockNeoWsServer) URL() string {
	return m.server.URL
}

// AddObject registers obj under the feed date key date (YYYY-MM-DD).
func (m *MockNeoWsServer) AddObject(date string, obj models.NeoWsObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[date] = append(m.objects[date], obj)
}

// FailWindow makes every request whose start_date equals startDate answer
// with status.
func (m *MockNeoWsServer) FailWindow(startDate string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[startDate] = status
}

// RateLimit answers the next n requests with 429 and the given Retry-After
// header value ("" omits the header).
func (m *MockNeoWsServer) RateLimit(n int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitCount = n
	m.retryAfter = retryAfter
}

// Requests returns a copy of the captured requests in arrival order.
func (m *MockNeoWsServer) Requests() []FeedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FeedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of feed requests received so far.
func (m *MockNeoWsServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears captured requests and injected failures. Objects stay.
func (m *MockNeoWsServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.failures = make(map[string]int)
	m.rateLimitCount = 0
	m.retryAfter = ""
}

func (m *MockNeoWsServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != FeedPath {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	req := FeedRequest{
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		APIKey:     q.Get("api_key"),
		ReceivedAt: time.Now(),
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)

	if m.rateLimitCount > 0 {
		m.rateLimitCount--
		retryAfter := m.retryAfter
		m.mu.Unlock()
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		writeNeoWsError(w, http.StatusTooManyRequests, "OVER_RATE_LIMIT", "You have exceeded your rate limit.")
		return
	}

	if status, ok := m.failures[req.StartDate]; ok {
		m.mu.Unlock()
		writeNeoWsError(w, status, "INJECTED_FAILURE", fmt.Sprintf("injected failure for window starting %s", req.StartDate))
		return
	}

	window, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		m.mu.Unlock()
		writeNeoWsError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	feed := models.NeoWsFeed{NearEarthObjects: make(map[string][]models.NeoWsObject)}
	for d := window.Start; !d.After(window.End); d = d.AddDays(1) {
		key := d.String()
		objs := append([]models.NeoWsObject{}, m.objects[key]...)
		feed.NearEarthObjects[key] = objs
		feed.ElementCount += len(objs)
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(feed); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseWindow(start, end string) (models.DateRange, error) {
	s, err := models.ParseDate(start)
	if err != nil {
		return models.DateRange{}, err
	}
	e, err := models.ParseDate(end)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.NewDateRange(s, e)
}

func writeNeoWsError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

// NeoObject builds a plausible feed entry with a single close approach on
// date. Diameters are given in meters and kilometers.
func NeoObject(id, name, date string) models.NeoWsObject {
	return models.NeoWsObject{
		ID:                 id,
		NeoReferenceID:     id,
		Name:               name,
		NasaJplURL:         "https://ssd.jpl.nasa.gov/tools/sbdb_lookup.html#/?sstr=" + id,
		AbsoluteMagnitudeH: 22.1,
		EstimatedDiameter: models.NeoWsEstimatedDiameter{
			Kilometers: &models.NeoWsDiameterRange{Min: 0.1011, Max: 0.2261},
			Meters:     &models.NeoWsDiameterRange{Min: 101.1, Max: 226.1},
		},
		IsPotentiallyHazardousAsteroid: false,
		CloseApproachData: []models.NeoWsCloseApproach{{
			CloseApproachDate:     date,
			CloseApproachDateFull: date + " 12:00",
			RelativeVelocity: models.NeoWsVelocity{
				KilometersPerSecond: "12.5",
				KilometersPerHour:   "45000.0",
			},
			MissDistance: models.NeoWsMissDistance{
				Astronomical: "0.05",
				Kilometers:   "7479893.535",
			},
			OrbitingBody: "Earth",
		}},
		OrbitalData: &models.NeoWsOrbitalData{
			OrbitID:          "12",
			ObservationsUsed: 45,
			DataArcInDays:    1234,
			OrbitalPeriod:    "365.25",
			Eccentricity:     ".21",
		},
	}
}
