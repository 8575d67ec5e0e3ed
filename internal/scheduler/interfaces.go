package scheduler

import (
	"context"

	"github.com/aristath/earnings/internal/clients/finnhub"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
)

// CalendarSource provides earnings calendar rows
type CalendarSource interface {
	EarningsCalendar(ctx context.Context, from, to string) ([]earnings.Report, error)
}

// GuidanceSource provides company guidance
type GuidanceSource interface {
	Guidance(ctx context.Context, from, to string, tickers []string) ([]earnings.Guidance, error)
}

// QuoteSource provides current and previous-close prices
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (market.Quote, error)
}

// ProfileSource provides market cap and shares outstanding
type ProfileSource interface {
	Profile(ctx context.Context, symbol string) (finnhub.Profile, error)
}

// EarningsStore persists reports and guidance
type EarningsStore interface {
	UpsertReports(ctx context.Context, reports []earnings.Report) error
	UpsertGuidance(ctx context.Context, items []earnings.Guidance) error
	SymbolsReportingBetween(ctx context.Context, from, to string) ([]string, error)
}

// QuoteWriter persists market data
type QuoteWriter interface {
	Upsert(ctx context.Context, q market.Quote) error
}
