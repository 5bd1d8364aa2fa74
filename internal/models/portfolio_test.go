package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioValue(t *testing.T) {
	holdings := map[string]float64{"AAPL": 10, "GOOGL": 5}
	prices := map[string]float64{"AAPL": 150, "GOOGL": 140}

	assert.Equal(t, 2200.0, PortfolioValue(holdings, prices))
}

func TestPortfolioValueSkipsUnpriced(t *testing.T) {
	holdings := map[string]float64{"AAPL": 10, "UNKNOWN": 100}
	prices := map[string]float64{"AAPL": 150}

	assert.Equal(t, 1500.0, PortfolioValue(holdings, prices))
}

func TestPortfolioValueEmpty(t *testing.T) {
	assert.Equal(t, 0.0, PortfolioValue(nil, nil))
	assert.Equal(t, 0.0, PortfolioValue(map[string]float64{}, map[string]float64{"AAPL": 150}))
}

func TestAllocation(t *testing.T) {
	holdings := map[string]float64{"AAPL": 10, "GOOGL": 5}
	prices := map[string]float64{"AAPL": 150, "GOOGL": 140}

	allocation := Allocation(holdings, prices)

	require.Len(t, allocation, 2)
	assert.InDelta(t, 68.18, allocation["AAPL"], 0.01)
	assert.InDelta(t, 31.82, allocation["GOOGL"], 0.01)

	sum := 0.0
	for _, pct := range allocation {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 0.0001)
}

func TestAllocationZeroValue(t *testing.T) {
	assert.Empty(t, Allocation(map[string]float64{"AAPL": 10}, map[string]float64{}))
}

func TestSuggestRebalance(t *testing.T) {
	current := map[string]float64{"AAPL": 70, "GOOGL": 30}
	target := map[string]float64{"AAPL": 50, "GOOGL": 50}

	suggestions := SuggestRebalance(current, target, 5.0)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "Reduce AAPL by 20.0% (drift from target)", suggestions[0])
	assert.Equal(t, "Increase GOOGL by 20.0% (drift from target)", suggestions[1])
}

func TestSuggestRebalanceWithinThreshold(t *testing.T) {
	current := map[string]float64{"AAPL": 52, "GOOGL": 48}
	target := map[string]float64{"AAPL": 50, "GOOGL": 50}

	assert.Empty(t, SuggestRebalance(current, target, 5.0))
}

func TestSuggestRebalanceMissingPositions(t *testing.T) {
	// Target names a symbol not currently held at all
	current := map[string]float64{"AAPL": 100}
	target := map[string]float64{"AAPL": 60, "MSFT": 40}

	suggestions := SuggestRebalance(current, target, 5.0)

	require.Len(t, suggestions, 2)
	assert.Contains(t, suggestions[0], "Reduce AAPL")
	assert.Contains(t, suggestions[1], "Increase MSFT")
}
