package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/config"
	"github.com/aristath/earnings/internal/database"
)

// InitializeDatabases opens both databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. earnings.db - Calendar rows, guidance, market data
	earningsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "earnings.db"),
		Profile: database.ProfileStandard,
		Name:    "earnings",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize earnings database: %w", err)
	}
	container.EarningsDB = earningsDB

	// 2. client_data.db - Upstream API response cache
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache, // Maximum speed for cache data
		Name:    "client_data",
	})
	if err != nil {
		earningsDB.Close()
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("All databases initialized and schemas applied")

	return container, nil
}
