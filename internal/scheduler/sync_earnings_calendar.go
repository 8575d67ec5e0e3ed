package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SyncEarningsCalendarJob stores the upcoming earnings calendar. Values are
// stored as received; sanitization happens on read.
type SyncEarningsCalendarJob struct {
	source    CalendarSource
	store     EarningsStore
	lookahead int
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewSyncEarningsCalendarJob creates a calendar sync covering today through
// today+lookahead days.
func NewSyncEarningsCalendarJob(source CalendarSource, store EarningsStore, lookahead int, log zerolog.Logger) *SyncEarningsCalendarJob {
	return &SyncEarningsCalendarJob{
		source:    source,
		store:     store,
		lookahead: lookahead,
		timeout:   5 * time.Minute,
		now:       time.Now,
		log:       log.With().Str("job", "sync_earnings_calendar").Logger(),
	}
}

// Name returns the job name
func (j *SyncEarningsCalendarJob) Name() string {
	return "sync_earnings_calendar"
}

// Run fetches the calendar window and upserts it
func (j *SyncEarningsCalendarJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	// include yesterday so late actuals for after-close reports land
	from, to := window(j.now(), 1, j.lookahead)

	reports, err := j.source.EarningsCalendar(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch earnings calendar: %w", err)
	}
	if len(reports) == 0 {
		j.log.Info().Str("from", from).Str("to", to).Msg("No calendar rows in window")
		return nil
	}

	if err := j.store.UpsertReports(ctx, reports); err != nil {
		return fmt.Errorf("failed to store earnings calendar: %w", err)
	}

	j.log.Info().
		Str("from", from).
		Str("to", to).
		Int("reports", len(reports)).
		Msg("Earnings calendar synced")
	return nil
}
