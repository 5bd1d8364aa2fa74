package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/finquery/internal/models"
)

// DataSource is the strategy behind the market data service. The live
// implementation queries an upstream API; the synthetic implementation
// fabricates plausible data for offline operation and tests.
type DataSource interface {
	// Fetch retrieves a snapshot with daily history bounded by [from, to]
	Fetch(ctx context.Context, symbol string, from, to time.Time) (*models.Snapshot, error)
}

// MarketDataService provides cached, rate-limited snapshot access
type MarketDataService interface {
	// GetSnapshot returns the snapshot for a symbol, or nil when no data
	// could be obtained. Never returns an error for upstream failures.
	GetSnapshot(ctx context.Context, symbol, period string) *models.Snapshot

	// GetSnapshots fetches multiple symbols independently; symbols that
	// fail are dropped from the result set.
	GetSnapshots(ctx context.Context, symbols []string, period string) map[string]*models.Snapshot
}

// SessionStore persists completed pipeline sessions
type SessionStore interface {
	// SaveSession stores a completed session record
	SaveSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// ListSessions returns the most recent sessions, newest first
	ListSessions(ctx context.Context, limit int) ([]*models.Session, error)

	// Close releases the underlying connection
	Close() error
}
