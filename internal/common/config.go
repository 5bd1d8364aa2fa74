package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for FinQuery
type Config struct {
	Environment string           `toml:"environment"`
	Clients     ClientsConfig    `toml:"clients"`
	MarketData  MarketDataConfig `toml:"marketdata"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL     string `toml:"base_url"`
	Timeout     string `toml:"timeout"`
	MinInterval string `toml:"min_interval"` // minimum spacing between outbound requests
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetMinInterval parses and returns the minimum inter-request interval
func (c *YahooConfig) GetMinInterval() time.Duration {
	d, err := time.ParseDuration(c.MinInterval)
	if err != nil {
		return time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// MarketDataConfig holds data acquisition and cache configuration
type MarketDataConfig struct {
	CacheTTL    string `toml:"cache_ttl"`
	MaxAttempts int    `toml:"max_attempts"`
	UseMock     bool   `toml:"use_mock"` // fall back to synthetic data when live fetch fails
}

// GetCacheTTL parses and returns the cache TTL duration
func (c *MarketDataConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// PipelineConfig holds pipeline tuning parameters
type PipelineConfig struct {
	MaxSymbols int    `toml:"max_symbols"` // hard cap on symbols fetched per query
	Period     string `toml:"period"`      // lookback period token for fetches
}

// StorageConfig holds the optional SurrealDB session journal settings.
// The journal is disabled when Address is empty; sessions then live only
// in memory for the duration of the run.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:     "https://query1.finance.yahoo.com",
				Timeout:     "10s",
				MinInterval: "1s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		MarketData: MarketDataConfig{
			CacheTTL:    "5m",
			MaxAttempts: 3,
			UseMock:     false,
		},
		Pipeline: PipelineConfig{
			MaxSymbols: 5,
			Period:     "1y",
		},
		Storage: StorageConfig{
			Namespace: "finquery",
			Database:  "finquery",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINQUERY_ENV"); env != "" {
		config.Environment = env
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}
	if model := os.Getenv("FINQUERY_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}
	if level := os.Getenv("FINQUERY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if mock := os.Getenv("FINQUERY_USE_MOCK"); mock != "" {
		if b, err := strconv.ParseBool(mock); err == nil {
			config.MarketData.UseMock = b
		}
	}
	if addr := os.Getenv("FINQUERY_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
}
