package signals

import (
	"github.com/bobmcallan/finquery/internal/models"
)

// Classify derives a signal label from the combined indicator score.
// RSI bands and momentum contribute weighted points; the combined score
// is damped when volatility exceeds 30%. A nil RSI or momentum forces
// neutral regardless of the other inputs.
func Classify(rsi, momentum, volatility *float64) models.SignalStrength {
	if rsi == nil || momentum == nil {
		return models.SignalNeutral
	}

	score := 0.0

	switch {
	case *rsi < 30:
		score += 2 // deep oversold
	case *rsi < 40:
		score += 1
	case *rsi > 70:
		score -= 2 // deep overbought
	case *rsi > 60:
		score -= 1
	}

	switch {
	case *momentum > 5:
		score += 1
	case *momentum > 0:
		score += 0.5
	case *momentum < -5:
		score -= 1
	case *momentum < 0:
		score -= 0.5
	}

	// high volatility argues for caution either way
	if volatility != nil && *volatility > 30 {
		score *= 0.8
	}

	switch {
	case score >= 2:
		return models.SignalStrongBuy
	case score >= 0.5:
		return models.SignalBuy
	case score <= -2:
		return models.SignalStrongSell
	case score <= -0.5:
		return models.SignalSell
	default:
		return models.SignalNeutral
	}
}

// Analyze runs the full indicator suite over a snapshot's close history.
// Returns nil when the snapshot has no history at all.
func Analyze(snapshot *models.Snapshot) *models.IndicatorAnalysis {
	if snapshot == nil || len(snapshot.History) == 0 {
		return nil
	}

	closes := snapshot.Closes()
	analysis := &models.IndicatorAnalysis{
		Symbol: snapshot.Symbol,
		Signal: models.SignalNeutral,
	}

	if v, ok := RSI(closes, RSIPeriod); ok {
		analysis.RSI = &v
	}
	if v, ok := Volatility(closes, VolatilityPeriod); ok {
		analysis.Volatility = &v
	}
	if v, ok := Momentum(closes, MomentumPeriod); ok {
		analysis.Momentum = &v
	}
	if v, ok := MovingAverage(closes, ShortMAWindow); ok {
		analysis.MA50 = &v
	}
	if v, ok := MovingAverage(closes, LongMAWindow); ok {
		analysis.MA200 = &v
	}

	analysis.Signal = Classify(analysis.RSI, analysis.Momentum, analysis.Volatility)
	return analysis
}
