// Package marketdata provides cached, rate-limited access to market
// snapshots with retry and synthetic fallback.
package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/finquery/internal/clients/yahoo"
	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
)

const (
	DefaultCacheTTL    = 5 * time.Minute
	DefaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
)

type cacheEntry struct {
	snapshot *models.Snapshot
	storedAt time.Time
}

// Service implements MarketDataService on top of a primary data source
// with an optional fallback. Snapshots are cached per symbol and period;
// rate-limited fetches are retried with exponential backoff.
type Service struct {
	source      interfaces.DataSource
	fallback    interfaces.DataSource
	logger      *common.Logger
	ttl         time.Duration
	maxAttempts int
	backoffBase time.Duration

	// retryable reports whether an upstream error is worth retrying.
	// Only rate limit responses qualify; anything else fails fast.
	retryable func(error) bool

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCacheTTL sets how long cached snapshots stay fresh
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxAttempts sets the fetch attempt budget per symbol
func WithMaxAttempts(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithFallback sets a secondary source used when the primary fails
func WithFallback(fallback interfaces.DataSource) ServiceOption {
	return func(s *Service) {
		s.fallback = fallback
	}
}

// WithBackoffBase overrides the first retry delay. Subsequent retries
// double it.
func WithBackoffBase(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.backoffBase = d
		}
	}
}

// NewService creates a market data service over the given source.
func NewService(source interfaces.DataSource, opts ...ServiceOption) *Service {
	s := &Service{
		source:      source,
		logger:      common.NewSilentLogger(),
		ttl:         DefaultCacheTTL,
		maxAttempts: DefaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		retryable:   yahoo.IsRateLimitError,
		cache:       make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetSnapshot returns the snapshot for a symbol, serving from cache when
// fresh. Returns nil when neither the primary nor the fallback source
// could produce data.
func (s *Service) GetSnapshot(ctx context.Context, symbol, period string) *models.Snapshot {
	key := symbol + "|" + period

	if snapshot := s.cached(key); snapshot != nil {
		s.logger.Debug().Str("symbol", symbol).Str("period", period).Msg("Cache hit")
		return snapshot
	}

	to := time.Now()
	from := to.AddDate(0, 0, -PeriodDays(period))

	snapshot, err := s.fetchWithRetry(ctx, symbol, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Fetch failed")
		if s.fallback == nil {
			return nil
		}
		snapshot, err = s.fallback.Fetch(ctx, symbol, from, to)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Fallback source failed")
			return nil
		}
		s.logger.Info().Str("symbol", symbol).Msg("Using fallback data")
	}

	s.store(key, snapshot)
	return snapshot
}

// GetSnapshots fetches each symbol independently. Symbols that fail are
// dropped from the result so one bad ticker never sinks the batch.
func (s *Service) GetSnapshots(ctx context.Context, symbols []string, period string) map[string]*models.Snapshot {
	result := make(map[string]*models.Snapshot, len(symbols))
	for _, symbol := range symbols {
		if snapshot := s.GetSnapshot(ctx, symbol, period); snapshot != nil {
			result[symbol] = snapshot
		}
	}
	return result
}

// fetchWithRetry tries the primary source up to maxAttempts times.
// Rate limit errors back off exponentially; any other error fails fast.
func (s *Service) fetchWithRetry(ctx context.Context, symbol string, from, to time.Time) (*models.Snapshot, error) {
	var lastErr error
	delay := s.backoffBase

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		snapshot, err := s.source.Fetch(ctx, symbol, from, to)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err

		if !s.retryable(err) || attempt == s.maxAttempts {
			break
		}

		s.logger.Debug().
			Str("symbol", symbol).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Rate limited, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, lastErr
}

func (s *Service) cached(key string) *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || time.Since(entry.storedAt) > s.ttl {
		return nil
	}
	return entry.snapshot
}

func (s *Service) store(key string, snapshot *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{snapshot: snapshot, storedAt: time.Now()}
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
