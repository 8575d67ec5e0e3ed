package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/modules/market"
)

// SyncMarketDataJob refreshes prices and company size for symbols reporting
// in the calendar window plus the watchlist.
type SyncMarketDataJob struct {
	quotes    []QuoteSource
	profiles  ProfileSource
	store     EarningsStore
	writer    QuoteWriter
	watchlist []string
	lookahead int
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewSyncMarketDataJob creates a market data sync job. quotes are tried in
// order until one succeeds; profiles may be nil.
func NewSyncMarketDataJob(
	quotes []QuoteSource,
	profiles ProfileSource,
	store EarningsStore,
	writer QuoteWriter,
	watchlist []string,
	lookahead int,
	log zerolog.Logger,
) *SyncMarketDataJob {
	return &SyncMarketDataJob{
		quotes:    quotes,
		profiles:  profiles,
		store:     store,
		writer:    writer,
		watchlist: watchlist,
		lookahead: lookahead,
		timeout:   15 * time.Minute,
		now:       time.Now,
		log:       log.With().Str("job", "sync_market_data").Logger(),
	}
}

// Name returns the job name
func (j *SyncMarketDataJob) Name() string {
	return "sync_market_data"
}

// Run refreshes every tracked symbol. Individual failures are logged; the
// run fails only when no symbol could be refreshed.
func (j *SyncMarketDataJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	from, to := window(j.now(), 1, j.lookahead)
	reporting, err := j.store.SymbolsReportingBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to load reporting symbols: %w", err)
	}
	symbols := mergeSymbols(reporting, j.watchlist)

	var synced, failed int
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("market data sync interrupted after %d symbols: %w", synced+failed, err)
		}

		q, err := j.fetch(ctx, symbol)
		if err == nil {
			err = j.writer.Upsert(ctx, q)
		}
		if err != nil {
			failed++
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to refresh market data")
			continue
		}
		synced++
	}

	j.log.Info().
		Int("symbols", len(symbols)).
		Int("synced", synced).
		Int("failed", failed).
		Msg("Market data synced")

	if failed > 0 && synced == 0 {
		return fmt.Errorf("market data sync failed for all %d symbols", failed)
	}
	return nil
}

func (j *SyncMarketDataJob) fetch(ctx context.Context, symbol string) (market.Quote, error) {
	var (
		q       market.Quote
		found   bool
		lastErr = errors.New("no quote source configured")
	)
	for _, src := range j.quotes {
		got, err := src.Quote(ctx, symbol)
		if err != nil {
			lastErr = err
			continue
		}
		complete := got.CurrentPrice != nil && got.PreviousClose != nil
		if !found || complete {
			q, found = got, true
		}
		if complete {
			break
		}
	}
	if !found {
		return market.Quote{}, lastErr
	}
	q.Symbol = symbol

	if j.profiles != nil {
		p, err := j.profiles.Profile(ctx, symbol)
		if err != nil {
			j.log.Debug().Err(err).Str("symbol", symbol).Msg("No company profile")
		} else {
			q.MarketCap = p.MarketCap
			q.SharesOutstanding = p.SharesOutstanding
		}
	}
	return q, nil
}
