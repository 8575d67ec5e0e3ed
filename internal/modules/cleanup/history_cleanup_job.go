// Package cleanup provides data cleanup and maintenance functionality.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/database"
)

// DefaultStaleQuoteAge is how long a market data row may go without an
// update before it is removed.
const DefaultStaleQuoteAge = 30 * 24 * time.Hour

// Result counts the rows removed by one run.
type Result struct {
	Reports  int64 `json:"reports"`
	Guidance int64 `json:"guidance"`
	Quotes   int64 `json:"quotes"`
}

// Total returns the number of rows removed.
func (r Result) Total() int64 {
	return r.Reports + r.Guidance + r.Quotes
}

// HistoryCleanupJob prunes earnings history older than the retention
// window and market data for symbols that stopped being synced.
type HistoryCleanupJob struct {
	db            *sql.DB
	retentionDays int
	staleQuoteAge time.Duration
	timeout       time.Duration
	now           func() time.Time
	log           zerolog.Logger
}

// NewHistoryCleanupJob creates a new history cleanup job
func NewHistoryCleanupJob(db *sql.DB, retentionDays int, log zerolog.Logger) *HistoryCleanupJob {
	return &HistoryCleanupJob{
		db:            db,
		retentionDays: retentionDays,
		staleQuoteAge: DefaultStaleQuoteAge,
		timeout:       2 * time.Minute,
		now:           time.Now,
		log:           log.With().Str("job", "history_cleanup").Logger(),
	}
}

// Name returns the job name for scheduling and logging.
func (j *HistoryCleanupJob) Name() string {
	return "history_cleanup"
}

// Run executes the cleanup job
func (j *HistoryCleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	res, err := j.Cleanup(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("History cleanup failed")
		return err
	}

	if res.Total() > 0 {
		j.log.Info().
			Int64("reports", res.Reports).
			Int64("guidance", res.Guidance).
			Int64("quotes", res.Quotes).
			Msg("History cleanup job completed")
	} else {
		j.log.Debug().Msg("No history to clean up")
	}
	return nil
}

// Cleanup deletes, in one transaction, reports dated before the retention
// cutoff, guidance announced before it and quotes not refreshed within the
// stale quote age.
func (j *HistoryCleanupJob) Cleanup(ctx context.Context) (Result, error) {
	if j.retentionDays < 1 {
		return Result{}, fmt.Errorf("retention must be at least one day, got %d", j.retentionDays)
	}

	now := j.now().UTC()
	cutoff := now.AddDate(0, 0, -j.retentionDays)
	cutoffDate := cutoff.Format("2006-01-02")
	staleBefore := now.Add(-j.staleQuoteAge).Unix()

	var res Result
	err := database.WithTransaction(j.db, func(tx *sql.Tx) error {
		var err error
		if res.Reports, err = exec(ctx, tx, "DELETE FROM earnings_reports WHERE report_date < ?", cutoffDate); err != nil {
			return fmt.Errorf("failed to prune earnings reports: %w", err)
		}
		if res.Guidance, err = exec(ctx, tx, "DELETE FROM guidance WHERE announced_at < ?", cutoff.Unix()); err != nil {
			return fmt.Errorf("failed to prune guidance: %w", err)
		}
		if res.Quotes, err = exec(ctx, tx, "DELETE FROM market_data WHERE updated_at < ?", staleBefore); err != nil {
			return fmt.Errorf("failed to prune market data: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func exec(ctx context.Context, tx *sql.Tx, query string, arg interface{}) (int64, error) {
	r, err := tx.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	return r.RowsAffected()
}
