package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/venue-resolution/internal/adapter/http"
	"github.com/couchcryptid/venue-resolution/internal/domain"
)

type mockClassifier struct {
	venue domain.VenueClass
	err   error
}

func (m *mockClassifier) ClassifyVenue(_ context.Context, lat, lng float64) (domain.VenueClass, error) {
	if err := domain.ValidateCoordinates(lat, lng); err != nil {
		return domain.VenueClass{}, err
	}
	return m.venue, m.err
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func testVenue() domain.VenueClass {
	return domain.VenueClass{
		Type:          domain.VenueNightclub,
		Energy:        0.9,
		Name:          "Kingdom",
		Provider:      "google_places",
		Lat:           30.266,
		Lng:           -97.739,
		DistanceM:     25,
		RawCategories: []string{"night_club"},
		Confidence:    0.85,
		ResolvedAt:    time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC),
	}
}

func newTestServer(classifier *mockClassifier, readyErr error) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", classifier, &mockReadiness{err: readyErr}, logger)
}

func doRequest(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestClassifyReturnsVenue(t *testing.T) {
	srv := newTestServer(&mockClassifier{venue: testVenue()}, nil)

	rec := doRequest(srv, "/v1/venues/classify?lat=30.2672&lng=-97.7431")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var venue domain.VenueClass
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &venue))
	assert.Equal(t, testVenue(), venue)
}

func TestClassifyMissingLat(t *testing.T) {
	srv := newTestServer(&mockClassifier{venue: testVenue()}, nil)

	rec := doRequest(srv, "/v1/venues/classify?lng=-97.7431")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "lat")
}

func TestClassifyNonNumericLng(t *testing.T) {
	srv := newTestServer(&mockClassifier{venue: testVenue()}, nil)

	rec := doRequest(srv, "/v1/venues/classify?lat=30.2672&lng=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyOutOfRangeCoordinates(t *testing.T) {
	srv := newTestServer(&mockClassifier{venue: testVenue()}, nil)

	rec := doRequest(srv, "/v1/venues/classify?lat=91&lng=0")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "coordinates")
}

func TestClassifyInternalError(t *testing.T) {
	srv := newTestServer(&mockClassifier{err: fmt.Errorf("boom")}, nil)

	rec := doRequest(srv, "/v1/venues/classify?lat=30.2672&lng=-97.7431")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["error"])
}

func TestClassifyRejectsPost(t *testing.T) {
	srv := newTestServer(&mockClassifier{venue: testVenue()}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/venues/classify?lat=1&lng=2", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockClassifier{}, nil)

	rec := doRequest(srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockClassifier{}, nil)

	rec := doRequest(srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockClassifier{}, fmt.Errorf("not ready yet"))

	rec := doRequest(srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockClassifier{}, nil)

	rec := doRequest(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
