package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
)

// stubProvider serves a fixed snapshot and readiness state.
type stubProvider struct {
	snap     domain.Snapshot
	hasSnap  bool
	readyErr error
}

func (p *stubProvider) Snapshot() (domain.Snapshot, bool) { return p.snap, p.hasSnap }

func (p *stubProvider) CheckReadiness(_ context.Context) error { return p.readyErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		RunID:       "run-1",
		Source:      "test.csv",
		GeneratedAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		RawRows:     10,
		DailyRows:   9,
		DroppedRows: 1,
		Monthly: []domain.MonthlyAggregate{
			{Year: 2020, Month: 1, Values: map[string]float64{"total_cases": 150}},
		},
		Seasonal: domain.SeasonalSummary{
			AvgMonthlyCases: 150,
			PeakYear:        2020,
			PeakMonths:      []int{1},
		},
		Regional: domain.RegionalSummary{HighestRegion: "Borneo"},
		Correlation: domain.CorrelationSummary{
			Temperature:     domain.Coefficient{Value: 0.42, Defined: true},
			StrongestFactor: "Temperature",
		},
	}
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0", &stubProvider{}, discardLogger())

	rec := doRequest(s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	provider := &stubProvider{readyErr: errors.New("no snapshot yet")}
	s := NewServer(":0", provider, discardLogger())

	rec := doRequest(s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no snapshot yet")

	provider.readyErr = nil
	rec = doRequest(s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIBeforeFirstSnapshot(t *testing.T) {
	s := NewServer(":0", &stubProvider{}, discardLogger())

	for _, path := range []string{"/api/monthly", "/api/summary", "/api/snapshot"} {
		rec := doRequest(s, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "no snapshot available yet", path)
	}
}

func TestAPIMonthly(t *testing.T) {
	s := NewServer(":0", &stubProvider{snap: testSnapshot(), hasSnap: true}, discardLogger())

	rec := doRequest(s, http.MethodGet, "/api/monthly")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var monthly []domain.MonthlyAggregate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	require.Len(t, monthly, 1)
	assert.Equal(t, 2020, monthly[0].Year)
	assert.Equal(t, 150.0, monthly[0].Values["total_cases"])
}

func TestAPISummary(t *testing.T) {
	s := NewServer(":0", &stubProvider{snap: testSnapshot(), hasSnap: true}, discardLogger())

	rec := doRequest(s, http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2020, body.Seasonal.PeakYear)
	assert.Equal(t, "Borneo", body.Regional.HighestRegion)
	assert.Equal(t, "Temperature", body.Correlation.StrongestFactor)
	assert.False(t, body.GeneratedAt.IsZero())
}

func TestAPISnapshot(t *testing.T) {
	s := NewServer(":0", &stubProvider{snap: testSnapshot(), hasSnap: true}, discardLogger())

	rec := doRequest(s, http.MethodGet, "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, 1, snap.DroppedRows)
}

func TestMethodNotAllowed(t *testing.T) {
	s := NewServer(":0", &stubProvider{}, discardLogger())

	rec := doRequest(s, http.MethodPost, "/api/monthly")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := NewServer(":0", &stubProvider{}, discardLogger())

	rec := doRequest(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
