package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/depth-log-etl/internal/adapter/http"
	"github.com/couchcryptid/depth-log-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	readyErr error
	report   *domain.Report
}

func (s *stubPipeline) CheckReadiness(_ context.Context) error { return s.readyErr }
func (s *stubPipeline) LatestReport() *domain.Report          { return s.report }

func serve(t *testing.T, srv *httpadapter.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func newServer(p *stubPipeline) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, p, slog.Default())
}

func TestStatusEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		readyErr   error
		path       string
		wantCode   int
		wantStatus string
		wantError  string
	}{
		{name: "healthz", path: "/healthz", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "healthz ignores readiness", readyErr: errors.New("cold"), path: "/healthz", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "readyz ready", path: "/readyz", wantCode: http.StatusOK, wantStatus: "ready"},
		{name: "readyz before first run", readyErr: errors.New("no report has been produced yet"), path: "/readyz",
			wantCode: http.StatusServiceUnavailable, wantStatus: "not ready", wantError: "no report has been produced yet"},
		{name: "report before first run", path: "/report", wantCode: http.StatusNotFound, wantStatus: "no report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newServer(&stubPipeline{readyErr: tt.readyErr}), http.MethodGet, tt.path)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newServer(&stubPipeline{}), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReportReturnsLatest(t *testing.T) {
	day := domain.Day{Year: 2023, Month: time.May, Day: 1}
	daily := []domain.DailyAggregate{{Day: day, Mean: 101.25, Count: 3}}
	report := &domain.Report{Source: "feeds.csv", Daily: daily, Marker: domain.LatestMarker(daily)}

	rec := serve(t, newServer(&stubPipeline{report: report}), http.MethodGet, "/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Source string `json:"source"`
		Daily  []struct {
			Day  string  `json:"day"`
			Mean float64 `json:"mean"`
		} `json:"daily"`
		Marker struct {
			Label string `json:"label"`
		} `json:"marker"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "feeds.csv", body.Source)
	require.Len(t, body.Daily, 1)
	assert.Equal(t, "2023-05-01", body.Daily[0].Day)
	assert.Equal(t, "last = 101.25cm @ 2023-05-01", body.Marker.Label)
}

func TestReportRejectsPost(t *testing.T) {
	rec := serve(t, newServer(&stubPipeline{}), http.MethodPost, "/report")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := &stubPipeline{}
	srv := httpadapter.NewServer(":0", p, p, logger)

	serve(t, srv, http.MethodGet, "/report")

	assert.Contains(t, buf.String(), `"path":"/report"`)
	assert.Contains(t, buf.String(), `"status":404`)
}
