package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clients/benzinga"
	"github.com/aristath/earnings/internal/clients/finnhub"
	"github.com/aristath/earnings/internal/clients/polygon"
	"github.com/aristath/earnings/internal/config"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/scheduler"
)

// InitializeServices creates upstream clients, the earnings service and the
// scheduler
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.EarningsRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.FinnhubClient = finnhub.NewClient(cfg.FinnhubAPIKey, cfg.FinnhubBaseURL, container.ClientDataRepo, log)
	container.PolygonClient = polygon.NewClient(cfg.PolygonAPIKey, cfg.PolygonBaseURL, container.ClientDataRepo, log)
	container.BenzingaClient = benzinga.NewClient(cfg.BenzingaAPIKey, cfg.BenzingaBaseURL, container.ClientDataRepo, log)

	for name, configured := range map[string]bool{
		"finnhub":  container.FinnhubClient.Configured(),
		"polygon":  container.PolygonClient.Configured(),
		"benzinga": container.BenzingaClient.Configured(),
	} {
		if !configured {
			log.Warn().Str("client", name).Msg("No API key configured, dependent jobs disabled")
		}
	}

	container.EarningsService = earnings.NewService(
		container.EarningsRepo,
		container.MarketRepo,
		cfg.MagnitudeCorrection(),
		log,
	)

	container.Scheduler = scheduler.New(log)

	log.Debug().Msg("Services initialized")
	return nil
}
