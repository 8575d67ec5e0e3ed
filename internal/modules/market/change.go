// Package market provides price-change and market-capitalization helpers
// plus storage for the latest quote per symbol.
package market

import (
	"math"
	"time"

	"github.com/aristath/earnings/internal/domain"
)

// Quote is the latest stored market data for a symbol.
type Quote struct {
	UpdatedAt         time.Time `json:"updated_at"`
	Symbol            string    `json:"symbol"`
	CurrentPrice      *float64  `json:"current_price"`
	PreviousClose     *float64  `json:"previous_close"`
	MarketCap         *float64  `json:"market_cap"`
	SharesOutstanding *float64  `json:"shares_outstanding"`
}

// EffectiveMarketCap returns the stored market cap, or price × shares when
// only those are known.
func (q Quote) EffectiveMarketCap() *float64 {
	if q.MarketCap != nil {
		return q.MarketCap
	}
	if q.CurrentPrice == nil || q.SharesOutstanding == nil {
		return nil
	}
	v := *q.CurrentPrice * *q.SharesOutstanding
	if !isFinite(v) {
		return nil
	}
	return &v
}

// Change bundles the derived figures for a quote.
type Change struct {
	PriceChangePercent *float64         `json:"price_change_percent"`
	MarketCapDiff      *float64         `json:"market_cap_diff"`
	Size               domain.SizeClass `json:"size"`
}

// PriceChangePercent returns ((current - previous) / previous) * 100.
// It returns nil when either price is missing or non-finite, previous is
// not positive, or the quotient overflows. An unchanged price returns 0, which is distinct from nil.
func PriceChangePercent(current, previous *float64) *float64 {
	if !validPair(current, previous) {
		return nil
	}
	v := (*current - *previous) / *previous * 100
	if !isFinite(v) {
		return nil
	}
	return &v
}

// MarketCapDiff returns the change in market capitalization implied by the
// price move: (current - previous) × shares. Same nil rules as
// PriceChangePercent, plus missing or non-finite shares.
func MarketCapDiff(current, previous, shares *float64) *float64 {
	if !validPair(current, previous) || shares == nil || !isFinite(*shares) {
		return nil
	}
	v := (*current - *previous) * *shares
	if !isFinite(v) {
		return nil
	}
	return &v
}

// CalculateChange derives every change figure for q.
func CalculateChange(q Quote) Change {
	return Change{
		PriceChangePercent: PriceChangePercent(q.CurrentPrice, q.PreviousClose),
		MarketCapDiff:      MarketCapDiff(q.CurrentPrice, q.PreviousClose, q.SharesOutstanding),
		Size:               ClassifyMarketCapSize(q.EffectiveMarketCap()),
	}
}

func validPair(current, previous *float64) bool {
	if current == nil || previous == nil {
		return false
	}
	if !isFinite(*current) || !isFinite(*previous) {
		return false
	}
	return *previous > 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
