package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/earnings/internal/database"
	"github.com/aristath/earnings/internal/scheduler"
)

// DatabaseChecker is the part of database.DB the system handlers use
type DatabaseChecker interface {
	Name() string
	QuickCheck(ctx context.Context) error
	GetStats() (*database.Stats, error)
}

var _ DatabaseChecker = (*database.DB)(nil)

// JobRunner runs registered jobs by name
type JobRunner interface {
	JobNames() []string
	RunByName(name string) error
}

// SystemHandlers serves health, database and job endpoints
type SystemHandlers struct {
	databases   []DatabaseChecker
	jobs        JobRunner
	systemStats func() (cpuPercent, memPercent float64)
	now         func() time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, databases []DatabaseChecker, jobs JobRunner) *SystemHandlers {
	h := &SystemHandlers{
		databases: databases,
		jobs:      jobs,
		now:       time.Now,
		log:       log.With().Str("handler", "system").Logger(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// DatabaseHealth is the quick-check result for one database
type DatabaseHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status     string           `json:"status"` // healthy or degraded
	Databases  []DatabaseHealth `json:"databases"`
	CPUPercent float64          `json:"cpu_percent"`
	MemPercent float64          `json:"mem_percent"`
}

// DatabaseStats is the size summary for one database
type DatabaseStats struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Size      string `json:"size"`
	WALSize   string `json:"wal_size"`
	PageCount int64  `json:"page_count"`
}

// HandleHealth reports database quick checks and host load. Returns 503
// when any database fails its check.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Databases: make([]DatabaseHealth, 0, len(h.databases))}
	for _, db := range h.databases {
		dh := DatabaseHealth{Name: db.Name(), Healthy: true}
		if err := db.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Database quick check failed")
			dh.Healthy = false
			dh.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Databases = append(resp.Databases, dh)
	}
	resp.CPUPercent, resp.MemPercent = h.systemStats()

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// HandleDatabaseStats returns file and page statistics per database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	out := make([]DatabaseStats, 0, len(h.databases))
	for _, db := range h.databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			h.writeError(w, http.StatusInternalServerError, "failed to get database stats")
			return
		}
		out = append(out, DatabaseStats{
			Name:      db.Name(),
			SizeBytes: stats.SizeBytes,
			Size:      humanize.IBytes(uint64(stats.SizeBytes)),
			WALSize:   humanize.IBytes(uint64(stats.WALSizeBytes)),
			PageCount: stats.PageCount,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// HandleListJobs lists the registered sync jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": h.jobs.JobNames()})
}

// HandleTriggerSync runs a registered job now and waits for it
// POST /api/sync/{job}
func (h *SystemHandlers) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")
	h.log.Info().Str("job", name).Msg("Manual sync triggered")

	start := h.now()
	err := h.jobs.RunByName(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, scheduler.ErrJobRunning):
		h.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "success",
		"duration_ms": h.now().Sub(start).Milliseconds(),
	})
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the health endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeEnvelope(w, status, map[string]interface{}{"error": msg})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, map[string]interface{}{"data": data})
}

func (h *SystemHandlers) writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	body["metadata"] = map[string]interface{}{
		"timestamp": h.now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
