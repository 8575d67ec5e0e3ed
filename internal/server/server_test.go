package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/earnings/internal/config"
	"github.com/aristath/earnings/internal/di"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:               t.TempDir(),
		Port:                  8080,
		CalendarLookaheadDays: 7,
		HistoryRetentionDays:  730,
		MicroUnitCorrection:   true,
		MicroUnitThreshold:    1e13,
		Schedules: config.Schedules{
			EarningsCalendar: "0 */30 * * * *",
			Guidance:         "0 5 */6 * * *",
			MarketData:       "0 */15 * * * *",
			Cleanup:          "0 0 3 * * *",
		},
	}
	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	s := New(Config{Log: zerolog.Nop(), Port: cfg.Port, DevMode: true, Container: container})
	s.systemHandlers.systemStats = func() (float64, float64) { return 12.5, 40 }
	return s
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Liveness(t *testing.T) {
	rec := serve(t, setupServer(t), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.Contains(t, rec.Body.String(), `"uptime_seconds"`)
}

func TestServer_APIHealth(t *testing.T) {
	rec := serve(t, setupServer(t), http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Data.Status)
	assert.Len(t, body.Data.Databases, 2)
	assert.Equal(t, 12.5, body.Data.CPUPercent)
}

func TestServer_ModuleRoutes(t *testing.T) {
	s := setupServer(t)

	rec := serve(t, s, http.MethodGet, "/api/earnings?date=2025-01-30")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/earnings?date=30/01/2025")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/market/AAPL")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	s := setupServer(t)
	serve(t, s, http.MethodGet, "/api/earnings?date=2025-01-30")

	rec := serve(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "earnings_api_requests_total"))
}

func TestServer_Sync(t *testing.T) {
	s := setupServer(t)

	rec := serve(t, s, http.MethodGet, "/api/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "client_data_cleanup")

	rec = serve(t, s, http.MethodPost, "/api/sync/client_data_cleanup")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodPost, "/api/sync/history_cleanup")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodPost, "/api/sync/sync_guidance")
	assert.Equal(t, http.StatusNotFound, rec.Code, "jobs without an API key are not registered")
}
