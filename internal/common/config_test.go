package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Clients.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL default = %q", cfg.Clients.Yahoo.BaseURL)
	}
	if cfg.Pipeline.MaxSymbols != 5 {
		t.Errorf("Pipeline.MaxSymbols default = %d, want 5", cfg.Pipeline.MaxSymbols)
	}
	if cfg.Pipeline.Period != "1y" {
		t.Errorf("Pipeline.Period default = %q, want 1y", cfg.Pipeline.Period)
	}
	if cfg.MarketData.MaxAttempts != 3 {
		t.Errorf("MarketData.MaxAttempts default = %d, want 3", cfg.MarketData.MaxAttempts)
	}
}

func TestConfig_GetCacheTTL(t *testing.T) {
	cfg := &MarketDataConfig{CacheTTL: "2m"}
	if d := cfg.GetCacheTTL(); d != 2*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 2m", d)
	}
}

func TestConfig_GetCacheTTL_InvalidFallsBack(t *testing.T) {
	cfg := &MarketDataConfig{CacheTTL: "not-a-duration"}
	if d := cfg.GetCacheTTL(); d != 5*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 5m (fallback for invalid)", d)
	}
}

func TestConfig_YahooDurations(t *testing.T) {
	cfg := &YahooConfig{Timeout: "30s", MinInterval: "500ms"}
	if d := cfg.GetTimeout(); d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, want 30s", d)
	}
	if d := cfg.GetMinInterval(); d != 500*time.Millisecond {
		t.Errorf("GetMinInterval() = %v, want 500ms", d)
	}
}

func TestConfig_YahooDurations_InvalidFallBack(t *testing.T) {
	cfg := &YahooConfig{Timeout: "bogus", MinInterval: ""}
	if d := cfg.GetTimeout(); d != 10*time.Second {
		t.Errorf("GetTimeout() = %v, want 10s fallback", d)
	}
	if d := cfg.GetMinInterval(); d != time.Second {
		t.Errorf("GetMinInterval() = %v, want 1s fallback", d)
	}
}

func TestConfig_GeminiKeyEnvOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "gem-from-env" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Clients.Gemini.APIKey, "gem-from-env")
	}
}

func TestConfig_UseMockEnvOverride(t *testing.T) {
	t.Setenv("FINQUERY_USE_MOCK", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if !cfg.MarketData.UseMock {
		t.Error("MarketData.UseMock = false after env override, want true")
	}
}

func TestConfig_LogLevelEnvOverride(t *testing.T) {
	t.Setenv("FINQUERY_LOG_LEVEL", "debug")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfig_FileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finquery.toml")
	content := `
environment = "production"

[pipeline]
max_symbols = 3
period = "6mo"

[marketdata]
cache_ttl = "1m"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	if cfg.Pipeline.MaxSymbols != 3 {
		t.Errorf("Pipeline.MaxSymbols = %d, want 3", cfg.Pipeline.MaxSymbols)
	}
	if cfg.Pipeline.Period != "6mo" {
		t.Errorf("Pipeline.Period = %q, want 6mo", cfg.Pipeline.Period)
	}
	// Untouched sections keep their defaults
	if cfg.Clients.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL = %q, want default", cfg.Clients.Yahoo.BaseURL)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/finquery.toml")
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if cfg.Pipeline.MaxSymbols != 5 {
		t.Errorf("missing file should leave defaults, MaxSymbols = %d", cfg.Pipeline.MaxSymbols)
	}
}
