package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/config"
	"github.com/aristath/earnings/internal/modules/cleanup"
	"github.com/aristath/earnings/internal/scheduler"
)

// RegisterJobs registers the sync jobs with the scheduler. Jobs whose
// upstream client has no API key are skipped.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}
	s := container.Scheduler

	// Job 1: Earnings calendar (Finnhub)
	if container.FinnhubClient.Configured() {
		job := scheduler.NewSyncEarningsCalendarJob(
			container.FinnhubClient,
			container.EarningsRepo,
			cfg.CalendarLookaheadDays,
			log,
		)
		if err := s.AddJob(cfg.Schedules.EarningsCalendar, job); err != nil {
			return nil, err
		}
		instances.SyncEarningsCalendar = job
	}

	// Job 2: Guidance (Benzinga)
	if container.BenzingaClient.Configured() {
		job := scheduler.NewSyncGuidanceJob(
			container.BenzingaClient,
			container.EarningsRepo,
			cfg.Watchlist,
			cfg.CalendarLookaheadDays,
			log,
		)
		if err := s.AddJob(cfg.Schedules.Guidance, job); err != nil {
			return nil, err
		}
		instances.SyncGuidance = job
	}

	// Job 3: Market data (Polygon first, Finnhub quote as fallback; Finnhub
	// profile for size)
	var quotes []scheduler.QuoteSource
	if container.PolygonClient.Configured() {
		quotes = append(quotes, container.PolygonClient)
	}
	if container.FinnhubClient.Configured() {
		quotes = append(quotes, container.FinnhubClient)
	}
	if len(quotes) > 0 {
		var profiles scheduler.ProfileSource
		if container.FinnhubClient.Configured() {
			profiles = container.FinnhubClient
		}
		job := scheduler.NewSyncMarketDataJob(
			quotes,
			profiles,
			container.EarningsRepo,
			container.MarketRepo,
			cfg.Watchlist,
			cfg.CalendarLookaheadDays,
			log,
		)
		if err := s.AddJob(cfg.Schedules.MarketData, job); err != nil {
			return nil, err
		}
		instances.SyncMarketData = job
	}

	// Job 4: Cache cleanup
	cacheCleanup := clientdata.NewCleanupJob(container.ClientDataRepo, log)
	if err := s.AddJob(cfg.Schedules.Cleanup, cacheCleanup); err != nil {
		return nil, err
	}
	instances.ClientDataCleanup = cacheCleanup

	// Job 5: History retention
	historyCleanup := cleanup.NewHistoryCleanupJob(container.EarningsDB.Conn(), cfg.HistoryRetentionDays, log)
	if err := s.AddJob(cfg.Schedules.Cleanup, historyCleanup); err != nil {
		return nil, err
	}
	instances.HistoryCleanup = historyCleanup

	log.Info().Strs("jobs", s.JobNames()).Msg("Jobs registered")
	return instances, nil
}
