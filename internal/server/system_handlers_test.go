package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/earnings/internal/database"
	"github.com/aristath/earnings/internal/scheduler"
)

type fakeDB struct {
	name     string
	checkErr error
	stats    *database.Stats
}

func (f *fakeDB) Name() string                       { return f.name }
func (f *fakeDB) QuickCheck(_ context.Context) error { return f.checkErr }
func (f *fakeDB) GetStats() (*database.Stats, error) {
	if f.stats == nil {
		return nil, errors.New("closed")
	}
	return f.stats, nil
}

type fakeJobs struct {
	err error
	ran []string
}

func (f *fakeJobs) JobNames() []string { return []string{"sync_earnings_calendar"} }
func (f *fakeJobs) RunByName(name string) error {
	f.ran = append(f.ran, name)
	return f.err
}

func newTestHandlers(dbs []DatabaseChecker, jobs JobRunner) *SystemHandlers {
	h := NewSystemHandlers(zerolog.Nop(), dbs, jobs)
	h.systemStats = func() (float64, float64) { return 1, 2 }
	h.now = func() time.Time { return time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC) }
	return h
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	body := struct {
		Data     json.RawMessage   `json:"data"`
		Metadata map[string]string `json:"metadata"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-01-30T12:00:00Z", body.Metadata["timestamp"])
	require.NoError(t, json.Unmarshal(body.Data, out))
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		dbs        []DatabaseChecker
		wantStatus int
		wantState  string
	}{
		{
			name:       "all healthy",
			dbs:        []DatabaseChecker{&fakeDB{name: "earnings"}, &fakeDB{name: "client_data"}},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "one failing",
			dbs:        []DatabaseChecker{&fakeDB{name: "earnings", checkErr: errors.New("disk I/O error")}},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(tt.dbs, &fakeJobs{})
			rec := httptest.NewRecorder()
			h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthResponse
			decodeData(t, rec, &resp)
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Len(t, resp.Databases, len(tt.dbs))
			assert.Equal(t, 2.0, resp.MemPercent)
		})
	}
}

func TestHandleDatabaseStats(t *testing.T) {
	h := newTestHandlers([]DatabaseChecker{
		&fakeDB{name: "earnings", stats: &database.Stats{SizeBytes: 2 << 20, WALSizeBytes: 4096, PageCount: 512}},
	}, &fakeJobs{})

	rec := httptest.NewRecorder()
	h.HandleDatabaseStats(rec, httptest.NewRequest(http.MethodGet, "/api/system/databases", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []DatabaseStats
	decodeData(t, rec, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, "2.0 MiB", stats[0].Size)
	assert.Equal(t, "4.0 KiB", stats[0].WALSize)
	assert.Equal(t, int64(512), stats[0].PageCount)

	h = newTestHandlers([]DatabaseChecker{&fakeDB{name: "broken"}}, &fakeJobs{})
	rec = httptest.NewRecorder()
	h.HandleDatabaseStats(rec, httptest.NewRequest(http.MethodGet, "/api/system/databases", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleTriggerSync(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown job", err: scheduler.ErrUnknownJob, wantStatus: http.StatusNotFound},
		{name: "already running", err: scheduler.ErrJobRunning, wantStatus: http.StatusConflict},
		{name: "upstream failure", err: errors.New("finnhub API error"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{err: tt.err}
			h := newTestHandlers(nil, jobs)

			r := chi.NewRouter()
			r.Post("/api/sync/{job}", h.HandleTriggerSync)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/sync_earnings_calendar", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, []string{"sync_earnings_calendar"}, jobs.ran)
		})
	}
}
