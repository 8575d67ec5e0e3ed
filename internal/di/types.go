// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/clients/benzinga"
	"github.com/aristath/earnings/internal/clients/finnhub"
	"github.com/aristath/earnings/internal/clients/polygon"
	"github.com/aristath/earnings/internal/database"
	"github.com/aristath/earnings/internal/modules/cleanup"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
	"github.com/aristath/earnings/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Databases
	EarningsDB   *database.DB // Reports, guidance, market data
	ClientDataDB *database.DB // Upstream API response cache

	// Repositories
	EarningsRepo   *earnings.Repository
	MarketRepo     *market.Repository
	ClientDataRepo *clientdata.Repository

	// Clients (always constructed; Configured() reports whether a key is set)
	FinnhubClient  *finnhub.Client
	PolygonClient  *polygon.Client
	BenzingaClient *benzinga.Client

	// Services
	EarningsService *earnings.Service
	Scheduler       *scheduler.Scheduler
}

// JobInstances holds the registered jobs. Nil fields were not registered
// because their upstream client has no API key.
type JobInstances struct {
	SyncEarningsCalendar *scheduler.SyncEarningsCalendarJob
	SyncGuidance         *scheduler.SyncGuidanceJob
	SyncMarketData       *scheduler.SyncMarketDataJob
	ClientDataCleanup    *clientdata.CleanupJob
	HistoryCleanup       *cleanup.HistoryCleanupJob
}

// Databases returns the open databases, for health checks and shutdown.
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.EarningsDB, c.ClientDataDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes all databases.
func (c *Container) Close() {
	for _, db := range c.Databases() {
		_ = db.Close()
	}
}
