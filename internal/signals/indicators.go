// Package signals provides technical indicator calculations
package signals

import (
	"math"
)

// Default indicator periods
const (
	RSIPeriod        = 14
	VolatilityPeriod = 20
	MomentumPeriod   = 20
	ShortMAWindow    = 50
	LongMAWindow     = 200
)

// RSI calculates the Relative Strength Index over the first period+1
// points of the series. The series is ordered oldest first. Returns
// ok=false when fewer than period+1 points are available.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change >= 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	rs := 0.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - (100 / (1 + rs)), true
}

// Volatility calculates the sample standard deviation of the trailing
// period's daily percent changes, expressed as a percentage. Returns
// ok=false when fewer than period points are available.
func Volatility(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	start := len(closes) - period
	if start < 1 {
		start = 1
	}
	changes := make([]float64, 0, period)
	for i := start; i < len(closes); i++ {
		if closes[i-1] != 0 {
			changes = append(changes, (closes[i]-closes[i-1])/closes[i-1])
		}
	}
	if len(changes) < 2 {
		return 0, false
	}

	mean := 0.0
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))

	variance := 0.0
	for _, c := range changes {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(changes) - 1)

	return math.Sqrt(variance) * 100, true
}

// Momentum calculates the percent change between the latest price and
// the price period points earlier. Returns ok=false when fewer than
// period points are available.
func Momentum(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	current := closes[len(closes)-1]
	past := closes[len(closes)-period]
	if past == 0 {
		return 0, false
	}
	return (current - past) / past * 100, true
}

// MovingAverage calculates the simple mean of the trailing window.
// Returns ok=false when the history is shorter than the window.
func MovingAverage(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}

	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window), true
}
