// Package app wires configuration, clients, and services into a running
// FinQuery instance. It is the shared core used by the CLI commands.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/finquery/internal/clients/gemini"
	"github.com/bobmcallan/finquery/internal/clients/yahoo"
	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/marketdata"
	"github.com/bobmcallan/finquery/internal/models"
	"github.com/bobmcallan/finquery/internal/pipeline"
	"github.com/bobmcallan/finquery/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	MarketData   interfaces.MarketDataService
	Engine       *pipeline.Engine
	SessionStore interfaces.SessionStore
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes clients, the market data service, and the pipeline
// engine. configPath may be empty, in which case the default resolution
// logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	// Load configuration - provided path, FINQUERY_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FINQUERY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "finquery.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finquery.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	market := buildMarketData(config, logger)

	var llm interfaces.ReasoningClient
	if config.Clients.Gemini.APIKey != "" {
		llm, err = gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - parsing and reasoning will degrade to fallbacks")
		llm = unavailableLLM{}
	}

	engine := pipeline.NewEngine(market, llm,
		pipeline.WithLogger(logger),
		pipeline.WithMaxSymbols(config.Pipeline.MaxSymbols),
		pipeline.WithPeriod(config.Pipeline.Period),
	)

	var store interfaces.SessionStore
	if config.Storage.Address != "" {
		store, err = storage.NewSessionStore(&config.Storage, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Session store unavailable - sessions will not be persisted")
			store = nil
		}
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return &App{
		Config:       config,
		Logger:       logger,
		MarketData:   market,
		Engine:       engine,
		SessionStore: store,
		StartupTime:  startupStart,
	}, nil
}

// buildMarketData assembles the data service. Live data goes through
// the rate-limited chart client; mock mode adds a synthetic fallback so
// failed fetches still produce data. Without mock mode a failed fetch
// yields no snapshot.
func buildMarketData(config *common.Config, logger *common.Logger) interfaces.MarketDataService {
	opts := []marketdata.ServiceOption{
		marketdata.WithLogger(logger),
		marketdata.WithCacheTTL(config.MarketData.GetCacheTTL()),
		marketdata.WithMaxAttempts(config.MarketData.MaxAttempts),
	}

	if config.MarketData.UseMock {
		logger.Info().Msg("Mock mode: synthetic fallback enabled for failed fetches")
		opts = append(opts, marketdata.WithFallback(marketdata.NewSyntheticSource()))
	}

	client := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithMinInterval(config.Clients.Yahoo.GetMinInterval()),
	)

	return marketdata.NewService(marketdata.NewLiveSource(client), opts...)
}

// RunQuery executes the full pipeline for one query and persists the
// session when a store is configured.
func (a *App) RunQuery(ctx context.Context, query string, holdings, targets map[string]float64) (*models.Session, error) {
	session := models.NewSession(query)
	session.Holdings = holdings
	session.TargetAllocation = targets

	a.Engine.Run(ctx, session)

	if a.SessionStore != nil {
		if err := a.SessionStore.SaveSession(ctx, session); err != nil {
			a.Logger.Warn().Err(err).Str("session", session.ID).Msg("Failed to persist session")
		}
	}

	return session, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.SessionStore != nil {
		a.SessionStore.Close()
		a.SessionStore = nil
	}
}

// unavailableLLM stands in when no API key is configured. Every call
// errors, which pushes the pipeline onto its fallback paths.
type unavailableLLM struct{}

func (unavailableLLM) Generate(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("reasoning client not configured (set GEMINI_API_KEY)")
}

var _ interfaces.ReasoningClient = unavailableLLM{}
