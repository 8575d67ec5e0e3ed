package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// guidanceLookback is how many days of announcements each run re-reads.
const guidanceLookback = 7

// SyncGuidanceJob stores guidance announced recently by companies in the
// calendar window or the watchlist.
type SyncGuidanceJob struct {
	source    GuidanceSource
	store     EarningsStore
	watchlist []string
	lookahead int
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewSyncGuidanceJob creates a guidance sync job
func NewSyncGuidanceJob(source GuidanceSource, store EarningsStore, watchlist []string, lookahead int, log zerolog.Logger) *SyncGuidanceJob {
	return &SyncGuidanceJob{
		source:    source,
		store:     store,
		watchlist: watchlist,
		lookahead: lookahead,
		timeout:   5 * time.Minute,
		now:       time.Now,
		log:       log.With().Str("job", "sync_guidance").Logger(),
	}
}

// Name returns the job name
func (j *SyncGuidanceJob) Name() string {
	return "sync_guidance"
}

// Run fetches guidance for tracked symbols and upserts it
func (j *SyncGuidanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	from, to := window(j.now(), guidanceLookback, 0)
	calFrom, calTo := window(j.now(), guidanceLookback, j.lookahead)

	reporting, err := j.store.SymbolsReportingBetween(ctx, calFrom, calTo)
	if err != nil {
		return fmt.Errorf("failed to load reporting symbols: %w", err)
	}
	symbols := mergeSymbols(reporting, j.watchlist)
	if len(symbols) == 0 {
		j.log.Info().Msg("No tracked symbols, skipping guidance sync")
		return nil
	}

	items, err := j.source.Guidance(ctx, from, to, symbols)
	if err != nil {
		return fmt.Errorf("failed to fetch guidance: %w", err)
	}
	if len(items) == 0 {
		j.log.Debug().Int("symbols", len(symbols)).Msg("No guidance announced")
		return nil
	}

	if err := j.store.UpsertGuidance(ctx, items); err != nil {
		return fmt.Errorf("failed to store guidance: %w", err)
	}

	j.log.Info().
		Int("symbols", len(symbols)).
		Int("guidance", len(items)).
		Msg("Guidance synced")
	return nil
}
