// Package handlers provides HTTP handlers for earnings reconciliation.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/validation"
	"github.com/aristath/earnings/pkg/numeric"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 8
	maxLimit     = 100
)

// EarningsService is the read side used by the handlers.
type EarningsService interface {
	GetDay(ctx context.Context, date string) ([]earnings.View, error)
	GetSymbol(ctx context.Context, symbol string, limit int) ([]earnings.View, error)
	GetStats(ctx context.Context, date string) (earnings.Stats, error)
}

// Handler handles earnings HTTP requests
type Handler struct {
	service EarningsService
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a new earnings handler
func NewHandler(service EarningsService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
		log:     log.With().Str("handler", "earnings").Logger(),
	}
}

// SurpriseRequest carries the inputs of a guidance surprise computation.
type SurpriseRequest struct {
	Guide          *float64          `json:"guide"`
	Estimate       *float64          `json:"estimate"`
	ConsensusPct   *float64          `json:"consensus_pct"`
	PrevMin        *float64          `json:"prev_min"`
	PrevMax        *float64          `json:"prev_max"`
	GuideFiscal    *domain.FiscalTag `json:"guide_fiscal"`
	EstimateFiscal *domain.FiscalTag `json:"estimate_fiscal"`
	GuideMethod    string            `json:"guide_method" validate:"max=32"`
	EstimateMethod string            `json:"estimate_method" validate:"max=32"`
}

// SanitizeRequest carries a raw actual/estimate pair. Each value may be a
// JSON number, a string such as "1.5B" or "$94,930,000,000", or null.
type SanitizeRequest struct {
	Actual   json.RawMessage `json:"actual"`
	Estimate json.RawMessage `json:"estimate"`
}

// HandleGetDay handles GET /api/earnings?date=YYYY-MM-DD
func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	views, err := h.service.GetDay(r.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to get earnings day")
		http.Error(w, "Failed to get earnings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":     date,
		"count":    len(views),
		"earnings": views,
	})
}

// HandleGetStats handles GET /api/earnings/stats?date=YYYY-MM-DD
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to get earnings stats")
		http.Error(w, "Failed to get earnings stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"stats": stats,
	})
}

// HandleGetSymbol handles GET /api/earnings/symbol/{symbol}?limit=N
func (h *Handler) HandleGetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if verr := validation.ValidateVar("symbol", symbol, "required,max=10"); verr != nil {
		h.writeValidationError(w, verr)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	views, err := h.service.GetSymbol(r.Context(), symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get symbol earnings")
		http.Error(w, "Failed to get earnings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"count":    len(views),
		"earnings": views,
	})
}

// HandleComputeSurprise handles POST /api/earnings/surprise
func (h *Handler) HandleComputeSurprise(w http.ResponseWriter, r *http.Request) {
	var req SurpriseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode surprise request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		h.writeValidationError(w, verr)
		return
	}

	result := earnings.ComputeSurprise(earnings.SurpriseInput{
		Guide:          req.Guide,
		Estimate:       req.Estimate,
		ConsensusPct:   req.ConsensusPct,
		PrevMin:        req.PrevMin,
		PrevMax:        req.PrevMax,
		GuideFiscal:    req.GuideFiscal,
		EstimateFiscal: req.EstimateFiscal,
		GuideMethod:    domain.ParseAccountingMethod(req.GuideMethod),
		EstimateMethod: domain.ParseAccountingMethod(req.EstimateMethod),
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":  result,
		"display": earnings.NewSurpriseDisplay(result),
	})
}

// HandleSanitize handles POST /api/earnings/sanitize
func (h *Handler) HandleSanitize(w http.ResponseWriter, r *http.Request) {
	var req SanitizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode sanitize request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actual, err := rawValue(req.Actual)
	if err != nil {
		http.Error(w, "actual must be a number, string or null", http.StatusBadRequest)
		return
	}
	estimate, err := rawValue(req.Estimate)
	if err != nil {
		http.Error(w, "estimate must be a number, string or null", http.StatusBadRequest)
		return
	}

	sanitized := earnings.SanitizeRaw(actual, estimate)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"actual":    sanitized,
		"duplicate": sanitized == nil && numeric.NormalizeToBaseUnits(actual) != nil,
	})
}

// rawValue turns a raw JSON scalar into something the numeric normalizer
// accepts. Numbers are kept as their literal text so integer precision is
// not lost to float64 decoding.
func rawValue(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9') {
		return string(trimmed), nil
	}
	return nil, errUnsupportedValue
}

var errUnsupportedValue = errors.New("unsupported JSON value")

// dateParam reads ?date=, defaulting to today. It writes the error
// response itself and reports false when the value is invalid.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return h.now().Format(dateLayout), true
	}
	if verr := validation.ValidateVar("date", date, "datetime="+dateLayout); verr != nil {
		h.writeValidationError(w, verr)
		return "", false
	}
	return date, true
}

func (h *Handler) writeValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	h.writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
		"error":  verr.Error(),
		"fields": verr.Fields,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, map[string]interface{}{"data": data})
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	body["metadata"] = map[string]interface{}{
		"timestamp": h.now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
