// Package handlers provides HTTP handlers for stored market data.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/modules/market"
	"github.com/aristath/earnings/internal/validation"
	"github.com/aristath/earnings/pkg/numeric"
)

// QuoteGetter loads the stored quote for a symbol.
type QuoteGetter interface {
	Get(ctx context.Context, symbol string) (*market.Quote, error)
}

// Handler handles market data HTTP requests
type Handler struct {
	quotes QuoteGetter
	log    zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(quotes QuoteGetter, log zerolog.Logger) *Handler {
	return &Handler{
		quotes: quotes,
		log:    log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetQuote handles GET /api/market/{symbol}
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if verr := validation.ValidateVar("symbol", symbol, "required,max=10"); verr != nil {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}

	quote, err := h.quotes.Get(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get quote")
		http.Error(w, "Failed to get market data", http.StatusInternalServerError)
		return
	}
	if quote == nil {
		http.Error(w, "No market data for "+symbol, http.StatusNotFound)
		return
	}

	change := market.CalculateChange(*quote)
	marketCap := quote.EffectiveMarketCap()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"quote":           quote,
		"change":          change,
		"market_cap":      marketCap,
		"market_cap_text": numeric.FormatCompact(marketCap, 2),
		"market_cap_diff": numeric.FormatCompact(change.MarketCapDiff, 2),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
