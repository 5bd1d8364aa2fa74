// Package interfaces defines service contracts for FinQuery
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/finquery/internal/models"
)

// ChartClient provides access to a daily-bar market data source
type ChartClient interface {
	// GetChart retrieves a quote snapshot with daily history for a symbol
	GetChart(ctx context.Context, symbol string, opts ...ChartOption) (*models.Snapshot, error)
}

// ChartOption configures chart data requests
type ChartOption func(*ChartParams)

// ChartParams holds chart query parameters
type ChartParams struct {
	From     time.Time
	To       time.Time
	Interval string // bar interval, e.g. "1d"
}

// WithDateRange sets the date range for the chart query
func WithDateRange(from, to time.Time) ChartOption {
	return func(p *ChartParams) {
		p.From = from
		p.To = to
	}
}

// WithInterval sets the bar interval for the chart query
func WithInterval(interval string) ChartOption {
	return func(p *ChartParams) {
		p.Interval = interval
	}
}

// ReasoningClient provides access to an opaque text-in/text-out
// reasoning capability
type ReasoningClient interface {
	// Generate produces free-form text from a system instruction and a
	// user context block
	Generate(ctx context.Context, system, prompt string) (string, error)
}
