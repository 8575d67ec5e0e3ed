package finnhub

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
	"github.com/aristath/earnings/pkg/numeric"
)

// Numeric fields are interface{} because Finnhub mixes numbers, numeric
// strings and null; they decode as json.Number or string.
type calendarResponse struct {
	EarningsCalendar []calendarEntry `json:"earningsCalendar"`
}

type calendarEntry struct {
	Date            string      `json:"date"`
	Hour            string      `json:"hour"`
	Symbol          string      `json:"symbol"`
	Quarter         interface{} `json:"quarter"`
	Year            interface{} `json:"year"`
	EPSActual       interface{} `json:"epsActual"`
	EPSEstimate     interface{} `json:"epsEstimate"`
	RevenueActual   interface{} `json:"revenueActual"`
	RevenueEstimate interface{} `json:"revenueEstimate"`
}

type profileResponse struct {
	Ticker            string      `json:"ticker"`
	MarketCap         interface{} `json:"marketCapitalization"` // millions
	SharesOutstanding interface{} `json:"shareOutstanding"`     // millions
}

type quoteResponse struct {
	Current       interface{} `json:"c"`
	PreviousClose interface{} `json:"pc"`
	Timestamp     interface{} `json:"t"`
}

// Profile holds company size figures in base units.
type Profile struct {
	Symbol            string   `json:"symbol"`
	MarketCap         *float64 `json:"market_cap"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
}

func transformCalendar(resp calendarResponse) []earnings.Report {
	now := time.Now().UTC()
	reports := make([]earnings.Report, 0, len(resp.EarningsCalendar))
	for _, e := range resp.EarningsCalendar {
		if e.Symbol == "" || e.Date == "" {
			continue
		}
		reports = append(reports, earnings.Report{
			UpdatedAt:       now,
			Symbol:          strings.ToUpper(e.Symbol),
			ReportDate:      e.Date,
			Hour:            strings.ToLower(e.Hour),
			Source:          "finnhub",
			Fiscal:          fiscalTag(e.Quarter, e.Year),
			EPSActual:       numeric.NormalizeToBaseUnits(e.EPSActual),
			EPSEstimate:     numeric.NormalizeToBaseUnits(e.EPSEstimate),
			RevenueActual:   numeric.ToInt64(e.RevenueActual),
			RevenueEstimate: numeric.ToInt64(e.RevenueEstimate),
		})
	}
	return reports
}

func fiscalTag(quarter, year interface{}) domain.FiscalTag {
	var tag domain.FiscalTag
	if q := numeric.ToInt64(quarter); q != nil {
		if p, ok := domain.FiscalPeriodFromQuarter(int(*q)); ok {
			tag.Period = p
		}
	}
	if y := numeric.ToInt64(year); y != nil {
		tag.Year = int(*y)
	}
	return tag
}

func transformProfile(resp profileResponse) Profile {
	return Profile{
		Symbol:            strings.ToUpper(resp.Ticker),
		MarketCap:         millions(resp.MarketCap),
		SharesOutstanding: millions(resp.SharesOutstanding),
	}
}

// millions converts a figure reported in millions to base units through the
// "M" suffix so the conversion stays decimal-exact.
func millions(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return nil
	}
	return numeric.NormalizeToBaseUnits(s + "M")
}

func transformQuote(symbol string, resp quoteResponse) market.Quote {
	q := market.Quote{
		UpdatedAt:     time.Now().UTC(),
		Symbol:        symbol,
		CurrentPrice:  positive(numeric.NormalizeToBaseUnits(resp.Current)),
		PreviousClose: positive(numeric.NormalizeToBaseUnits(resp.PreviousClose)),
	}
	if ts := numeric.ToInt64(resp.Timestamp); ts != nil && *ts > 0 {
		q.UpdatedAt = time.Unix(*ts, 0).UTC()
	}
	return q
}

// positive drops the zero prices Finnhub returns for unknown symbols.
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
