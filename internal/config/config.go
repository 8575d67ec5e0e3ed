// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/earnings/internal/utils"
	"github.com/aristath/earnings/pkg/numeric"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for earnings.db and client_data.db (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	FinnhubAPIKey   string
	FinnhubBaseURL  string
	PolygonAPIKey   string
	PolygonBaseURL  string
	BenzingaAPIKey  string
	BenzingaBaseURL string

	Watchlist             []string
	CalendarLookaheadDays int
	HistoryRetentionDays  int
	Schedules             Schedules

	MicroUnitCorrection bool
	MicroUnitThreshold  float64
}

// Schedules holds cron specs (with seconds) for the sync jobs
type Schedules struct {
	EarningsCalendar string
	Guidance         string
	MarketData       string
	Cleanup          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("EARNINGS_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		FinnhubAPIKey:   getEnv("FINNHUB_API_KEY", ""),
		FinnhubBaseURL:  getEnv("FINNHUB_BASE_URL", ""),
		PolygonAPIKey:   getEnv("POLYGON_API_KEY", ""),
		PolygonBaseURL:  getEnv("POLYGON_BASE_URL", ""),
		BenzingaAPIKey:  getEnv("BENZINGA_API_KEY", ""),
		BenzingaBaseURL: getEnv("BENZINGA_BASE_URL", ""),

		Watchlist:             utils.ParseSymbols(getEnv("WATCHLIST", "")),
		CalendarLookaheadDays: getEnvAsInt("CALENDAR_LOOKAHEAD_DAYS", 7),
		HistoryRetentionDays:  getEnvAsInt("HISTORY_RETENTION_DAYS", 730),
		Schedules: Schedules{
			EarningsCalendar: getEnv("SYNC_EARNINGS_SCHEDULE", "0 */30 * * * *"),
			Guidance:         getEnv("SYNC_GUIDANCE_SCHEDULE", "0 5 */6 * * *"),
			MarketData:       getEnv("SYNC_MARKET_SCHEDULE", "0 */15 * * * *"),
			Cleanup:          getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
		},

		MicroUnitCorrection: getEnvAsBool("MICRO_UNIT_CORRECTION", true),
		MicroUnitThreshold:  getEnvAsFloat("MICRO_UNIT_THRESHOLD", numeric.DefaultMagnitudeCorrection.Threshold),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and cron specs
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 1 and 65535", c.Port)
	}
	if c.CalendarLookaheadDays < 1 {
		return fmt.Errorf("invalid CALENDAR_LOOKAHEAD_DAYS %d: must be positive", c.CalendarLookaheadDays)
	}
	if c.HistoryRetentionDays < 1 {
		return fmt.Errorf("invalid HISTORY_RETENTION_DAYS %d: must be positive", c.HistoryRetentionDays)
	}
	if c.MicroUnitThreshold <= 0 {
		return fmt.Errorf("invalid MICRO_UNIT_THRESHOLD %g: must be positive", c.MicroUnitThreshold)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"SYNC_EARNINGS_SCHEDULE": c.Schedules.EarningsCalendar,
		"SYNC_GUIDANCE_SCHEDULE": c.Schedules.Guidance,
		"SYNC_MARKET_SCHEDULE":   c.Schedules.MarketData,
		"CLEANUP_SCHEDULE":       c.Schedules.Cleanup,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	return nil
}

// MagnitudeCorrection returns the revenue micro-unit correction settings
func (c *Config) MagnitudeCorrection() numeric.MagnitudeCorrection {
	mc := numeric.DefaultMagnitudeCorrection
	mc.Enabled = c.MicroUnitCorrection
	mc.Threshold = c.MicroUnitThreshold
	return mc
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
