// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir        string // Base directory for cache DB and CSV files (always absolute)
	TigerAPIKey    string
	TigerAPISecret string
	TigerAccount   string
	LogLevel       string
	Port           int

	// Strategy flags. One configurable allocation/reconciliation pipeline
	// covers both the plain and the technical/correlation-aware variants.
	TechnicalSignals   bool    // Include technical score + volatility multiplier
	CorrelationPenalty bool    // Apply the correlation de-duplication pass
	LotAware           bool    // Round order quantities to market lot sizes
	MaxSectorWeight    float64 // Per-sector concentration cap
	CorrelationCutoff  float64 // Pairwise correlation penalty threshold
	PenaltyFactor      float64 // Weight multiplier per correlated higher-ranked peer
	MaxEntryPairs      int     // Top-N pairs eligible for stat-arb entries
	BenchmarkTicker    string  // Market regime benchmark

	// File interfaces
	TickersFile  string
	PairsFile    string
	ScreenFile   string
	TradeLogFile string
}

// Load reads configuration from environment variables, with .env support.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("RELVAL_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		TigerAPIKey:    getEnv("TIGER_API_KEY", ""),
		TigerAPISecret: getEnv("TIGER_API_SECRET", ""),
		TigerAccount:   getEnv("TIGER_ACCOUNT", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvAsInt("RELVAL_PORT", 8001),

		TechnicalSignals:   getEnvAsBool("TECHNICAL_SIGNALS", true),
		CorrelationPenalty: getEnvAsBool("CORRELATION_PENALTY", true),
		LotAware:           getEnvAsBool("LOT_AWARE", true),
		MaxSectorWeight:    getEnvAsFloat("MAX_SECTOR_WEIGHT", 0.30),
		CorrelationCutoff:  getEnvAsFloat("CORRELATION_CUTOFF", 0.80),
		PenaltyFactor:      getEnvAsFloat("CORRELATION_PENALTY_FACTOR", 0.50),
		MaxEntryPairs:      getEnvAsInt("MAX_ENTRY_PAIRS", 5),
		BenchmarkTicker:    getEnv("BENCHMARK_TICKER", "^STI"),

		TickersFile:  getEnv("TICKERS_FILE", filepath.Join(absDataDir, "tickers.txt")),
		PairsFile:    getEnv("PAIRS_FILE", filepath.Join(absDataDir, "cointegrated_pairs.csv")),
		ScreenFile:   getEnv("SCREEN_FILE", filepath.Join(absDataDir, "stock_screen_results.csv")),
		TradeLogFile: getEnv("TRADE_LOG_FILE", filepath.Join(absDataDir, "trade_log.csv")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency. Broker credentials are not
// required here: screening and backtesting run without a broker, and the
// reconciler checks connectivity itself before any order is considered.
func (c *Config) Validate() error {
	if c.MaxSectorWeight <= 0 || c.MaxSectorWeight > 1 {
		return fmt.Errorf("MAX_SECTOR_WEIGHT must be in (0, 1], got %v", c.MaxSectorWeight)
	}
	if c.CorrelationCutoff <= 0 || c.CorrelationCutoff > 1 {
		return fmt.Errorf("CORRELATION_CUTOFF must be in (0, 1], got %v", c.CorrelationCutoff)
	}
	if c.PenaltyFactor < 0 || c.PenaltyFactor > 1 {
		return fmt.Errorf("CORRELATION_PENALTY_FACTOR must be in [0, 1], got %v", c.PenaltyFactor)
	}
	if c.MaxEntryPairs < 0 {
		return fmt.Errorf("MAX_ENTRY_PAIRS must be >= 0, got %d", c.MaxEntryPairs)
	}
	return nil
}

// CacheDBPath returns the path of the client-data cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "client_data.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
