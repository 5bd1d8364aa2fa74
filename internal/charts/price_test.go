package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finquery/internal/models"
)

func snapshotWithHistory(days int) *models.Snapshot {
	bars := make([]models.Bar, days)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 150.0
	for i := range bars {
		bars[i] = models.Bar{Date: base.AddDate(0, 0, i), Close: price, Volume: 1000000}
		price += 0.5
	}
	return &models.Snapshot{Symbol: "AAPL", Price: price, History: bars}
}

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart(snapshotWithHistory(120))
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output should be a PNG")
}

func TestRenderPriceChartShortHistory(t *testing.T) {
	// Too short for the MA overlay but still chartable
	png, err := RenderPriceChart(snapshotWithHistory(10))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPriceChartErrors(t *testing.T) {
	_, err := RenderPriceChart(nil)
	assert.Error(t, err)

	_, err = RenderPriceChart(snapshotWithHistory(1))
	assert.Error(t, err)
}

func TestMovingAverageSeries(t *testing.T) {
	snapshot := snapshotWithHistory(60)

	series := movingAverageSeries(snapshot, 50)
	require.NotNil(t, series)
	assert.Len(t, series.YValues, 11)

	assert.Nil(t, movingAverageSeries(snapshotWithHistory(40), 50))
}
