// Package charts renders analysis output as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/finquery/internal/models"
)

// RenderPriceChart renders a PNG line chart of a snapshot's close
// history. When the history is long enough, the 50-day moving average
// is overlaid as a dashed series. Returns raw PNG bytes.
func RenderPriceChart(snapshot *models.Snapshot) ([]byte, error) {
	if snapshot == nil || len(snapshot.History) < 2 {
		return nil, fmt.Errorf("need at least 2 history bars to chart")
	}

	xValues := make([]time.Time, len(snapshot.History))
	closeY := make([]float64, len(snapshot.History))
	for i, bar := range snapshot.History {
		xValues[i] = bar.Date
		closeY[i] = bar.Close
	}

	priceSeries := chart.TimeSeries{
		Name: snapshot.Symbol + " Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	series := []chart.Series{priceSeries}

	if ma := movingAverageSeries(snapshot, 50); ma != nil {
		series = append(series, *ma)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price History", snapshot.Symbol),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// movingAverageSeries builds a dashed trailing-average overlay, or nil
// when the history is shorter than the window.
func movingAverageSeries(snapshot *models.Snapshot, window int) *chart.TimeSeries {
	if len(snapshot.History) < window {
		return nil
	}

	closes := snapshot.Closes()
	xValues := make([]time.Time, 0, len(closes)-window+1)
	yValues := make([]float64, 0, len(closes)-window+1)

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			xValues = append(xValues, snapshot.History[i].Date)
			yValues = append(yValues, sum/float64(window))
		}
	}

	return &chart.TimeSeries{
		Name: fmt.Sprintf("%d-day MA", window),
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: yValues,
	}
}
