package testing

import (
	"time"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
)

// FixtureDate is the report date used by all fixtures.
const FixtureDate = "2025-01-30"

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

// NewReportFixtures returns calendar rows for FixtureDate:
//   - AAPL: an EPS and revenue beat
//   - MSFT: revenue actual duplicating the estimate (a placeholder the feed
//     copies before results are out)
//   - TINY: actuals not yet reported
func NewReportFixtures() []earnings.Report {
	updated := time.Date(2025, 1, 30, 22, 0, 0, 0, time.UTC)
	return []earnings.Report{
		{
			UpdatedAt:       updated,
			Symbol:          "AAPL",
			ReportDate:      FixtureDate,
			Hour:            "amc",
			Source:          "finnhub",
			Fiscal:          domain.FiscalTag{Period: domain.PeriodQ1, Year: 2025},
			EPSActual:       f64(2.40),
			EPSEstimate:     f64(2.35),
			RevenueActual:   i64(124_300_000_000),
			RevenueEstimate: i64(124_126_000_000),
		},
		{
			UpdatedAt:       updated,
			Symbol:          "MSFT",
			ReportDate:      FixtureDate,
			Hour:            "amc",
			Source:          "finnhub",
			Fiscal:          domain.FiscalTag{Period: domain.PeriodQ2, Year: 2025},
			EPSActual:       f64(3.23),
			EPSEstimate:     f64(3.11),
			RevenueActual:   i64(69_600_000_000),
			RevenueEstimate: i64(69_600_000_000),
		},
		{
			UpdatedAt:   updated,
			Symbol:      "TINY",
			ReportDate:  FixtureDate,
			Hour:        "bmo",
			Source:      "finnhub",
			EPSEstimate: f64(-0.12),
		},
	}
}

// NewGuidanceFixtures returns guidance issued alongside the AAPL report:
// the EPS guide compares against a matching estimate, the revenue guide
// falls back to the previous guidance range.
func NewGuidanceFixtures() []earnings.Guidance {
	q2 := domain.FiscalTag{Period: domain.PeriodQ2, Year: 2025}
	return []earnings.Guidance{
		{
			AnnouncedAt:         time.Date(2025, 1, 30, 21, 30, 0, 0, time.UTC),
			Symbol:              "AAPL",
			Fiscal:              q2,
			Method:              domain.MethodAdjusted,
			EstimateFiscal:      q2,
			EstimateMethod:      domain.MethodAdjusted,
			EPSGuide:            f64(1.65),
			EPSEstimate:         f64(1.60),
			RevenueGuide:        f64(96e9),
			RevenueGuidePrevMin: f64(90e9),
			RevenueGuidePrevMax: f64(94e9),
		},
	}
}

// NewQuoteFixtures returns market data for the report fixtures.
func NewQuoteFixtures() []market.Quote {
	updated := time.Date(2025, 1, 30, 21, 0, 0, 0, time.UTC)
	return []market.Quote{
		{
			UpdatedAt:         updated,
			Symbol:            "AAPL",
			CurrentPrice:      f64(237.59),
			PreviousClose:     f64(238.26),
			MarketCap:         f64(3.57e12),
			SharesOutstanding: f64(15.04e9),
		},
		{
			UpdatedAt:     updated,
			Symbol:        "TINY",
			CurrentPrice:  f64(4.20),
			PreviousClose: f64(4.00),
			MarketCap:     f64(150e6),
		},
	}
}
