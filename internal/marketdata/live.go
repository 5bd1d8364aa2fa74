package marketdata

import (
	"context"
	"time"

	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
)

// LiveSource adapts a chart client to the DataSource interface.
type LiveSource struct {
	client interfaces.ChartClient
}

// NewLiveSource creates a live source backed by a chart client.
func NewLiveSource(client interfaces.ChartClient) *LiveSource {
	return &LiveSource{client: client}
}

// Fetch retrieves a snapshot with daily bars for the date range.
func (s *LiveSource) Fetch(ctx context.Context, symbol string, from, to time.Time) (*models.Snapshot, error) {
	return s.client.GetChart(ctx, symbol, interfaces.WithDateRange(from, to))
}

// Ensure LiveSource implements DataSource
var _ interfaces.DataSource = (*LiveSource)(nil)
