package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/earnings/internal/modules/earnings"
)

type fakeService struct {
	lastDate   string
	lastSymbol string
	lastLimit  int
	views      []earnings.View
	stats      earnings.Stats
	err        error
}

func (f *fakeService) GetDay(_ context.Context, date string) ([]earnings.View, error) {
	f.lastDate = date
	return f.views, f.err
}

func (f *fakeService) GetSymbol(_ context.Context, symbol string, limit int) ([]earnings.View, error) {
	f.lastSymbol = symbol
	f.lastLimit = limit
	return f.views, f.err
}

func (f *fakeService) GetStats(_ context.Context, date string) (earnings.Stats, error) {
	f.lastDate = date
	return f.stats, f.err
}

func setupRouter(svc *fakeService) chi.Router {
	h := NewHandler(svc, zerolog.New(nil).Level(zerolog.Disabled))
	h.now = func() time.Time { return time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	}
	return w, response
}

func TestHandleGetDay(t *testing.T) {
	svc := &fakeService{views: []earnings.View{{Symbol: "AAPL", ReportDate: "2025-01-30"}}}
	r := setupRouter(svc)

	w, response := do(t, r, http.MethodGet, "/api/earnings?date=2025-01-29", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-01-29", svc.lastDate)
	assert.Contains(t, response, "metadata")

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	_, _ = do(t, r, http.MethodGet, "/api/earnings", "")
	assert.Equal(t, "2025-01-30", svc.lastDate, "defaults to today")
}

func TestHandleGetDay_InvalidDate(t *testing.T) {
	w, response := do(t, setupRouter(&fakeService{}), http.MethodGet, "/api/earnings?date=30-01-2025", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["error"], "date must be a date")
}

func TestHandleGetDay_ServiceError(t *testing.T) {
	w, _ := do(t, setupRouter(&fakeService{err: errors.New("boom")}), http.MethodGet, "/api/earnings", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleGetStats(t *testing.T) {
	svc := &fakeService{stats: earnings.Stats{Count: 3, Beats: 2, Misses: 1}}
	w, response := do(t, setupRouter(svc), http.MethodGet, "/api/earnings/stats?date=2025-01-29", "")
	require.Equal(t, http.StatusOK, w.Code)

	stats := response["data"].(map[string]interface{})["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["count"])
	assert.Nil(t, stats["mean"])
}

func TestHandleGetSymbol(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantLimit int
	}{
		{"default limit", "/api/earnings/symbol/aapl", http.StatusOK, defaultLimit},
		{"explicit limit", "/api/earnings/symbol/AAPL?limit=3", http.StatusOK, 3},
		{"limit is capped", "/api/earnings/symbol/AAPL?limit=1000", http.StatusOK, maxLimit},
		{"bad limit", "/api/earnings/symbol/AAPL?limit=abc", http.StatusBadRequest, 0},
		{"symbol too long", "/api/earnings/symbol/ABCDEFGHIJKL", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			w, _ := do(t, setupRouter(svc), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "AAPL", svc.lastSymbol)
				assert.Equal(t, tt.wantLimit, svc.lastLimit)
			}
		})
	}
}

func TestHandleComputeSurprise(t *testing.T) {
	r := setupRouter(&fakeService{})

	body := `{
		"guide": 1.95, "estimate": 1.0,
		"guide_fiscal": {"period": "Q1", "year": 2025},
		"estimate_fiscal": {"period": "Q1", "year": 2025},
		"guide_method": "Adjusted", "estimate_method": "non-GAAP"
	}`
	w, response := do(t, r, http.MethodPost, "/api/earnings/surprise", body)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.InDelta(t, 95, result["value"].(float64), 1e-9)
	assert.Equal(t, "estimate", result["basis"])
	assert.Equal(t, false, result["extreme"])

	display := data["display"].(map[string]interface{})
	assert.Equal(t, "+95.00%", display["label"])
}

func TestHandleComputeSurprise_NoBasisIsNull(t *testing.T) {
	w, response := do(t, setupRouter(&fakeService{}), http.MethodPost, "/api/earnings/surprise", `{"guide": 2.0}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := response["data"].(map[string]interface{})["result"].(map[string]interface{})
	assert.Nil(t, result["value"])
	assert.Nil(t, result["basis"])
}

func TestHandleComputeSurprise_Invalid(t *testing.T) {
	r := setupRouter(&fakeService{})

	w, _ := do(t, r, http.MethodPost, "/api/earnings/surprise", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response := do(t, r, http.MethodPost, "/api/earnings/surprise", `{"guide_fiscal": {"period": "Q7", "year": 2025}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["error"], "period must be one of")
}

func TestHandleSanitize(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantActual    interface{}
		wantDuplicate bool
	}{
		{"numeric duplicate", `{"actual": -0.33, "estimate": -0.33}`, nil, true},
		{"suffixed duplicate", `{"actual": "1.5B", "estimate": 1500000000}`, nil, true},
		{"large integer duplicate", `{"actual": 94930000000, "estimate": "94930000000"}`, nil, true},
		{"distinct values", `{"actual": "1.6B", "estimate": "1.5B"}`, float64(1_600_000_000), false},
		{"missing estimate", `{"actual": 2.5}`, 2.5, false},
		{"unparsable actual", `{"actual": "n/a", "estimate": 1}`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := do(t, setupRouter(&fakeService{}), http.MethodPost, "/api/earnings/sanitize", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.wantActual, data["actual"])
			assert.Equal(t, tt.wantDuplicate, data["duplicate"])
		})
	}
}

func TestHandleSanitize_RejectsNonScalar(t *testing.T) {
	w, _ := do(t, setupRouter(&fakeService{}), http.MethodPost, "/api/earnings/sanitize", `{"actual": [1], "estimate": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRoutes(t *testing.T) {
	handler := NewHandler(&fakeService{}, zerolog.New(nil).Level(zerolog.Disabled))
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
