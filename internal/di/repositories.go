package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
)

// InitializeRepositories creates the data access layer
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.EarningsDB == nil || container.ClientDataDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	container.EarningsRepo = earnings.NewRepository(container.EarningsDB.Conn(), log)
	container.MarketRepo = market.NewRepository(container.EarningsDB.Conn(), log)
	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())

	log.Debug().Msg("Repositories initialized")
	return nil
}
