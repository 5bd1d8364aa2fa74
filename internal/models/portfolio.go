package models

import (
	"fmt"
	"sort"
)

// PortfolioValue computes the total market value of the holdings using
// the supplied prices. Holdings without a known price are skipped.
func PortfolioValue(holdings, prices map[string]float64) float64 {
	total := 0.0
	for symbol, shares := range holdings {
		if price, ok := prices[symbol]; ok {
			total += shares * price
		}
	}
	return total
}

// Allocation computes the percent allocation of each position. The
// returned percentages sum to 100 (within rounding) over the priced
// holdings. Returns an empty map when the portfolio has no value.
func Allocation(holdings, prices map[string]float64) map[string]float64 {
	total := PortfolioValue(holdings, prices)
	if total == 0 {
		return map[string]float64{}
	}

	allocation := make(map[string]float64, len(holdings))
	for symbol, shares := range holdings {
		if price, ok := prices[symbol]; ok {
			allocation[symbol] = (shares * price / total) * 100
		}
	}
	return allocation
}

// SuggestRebalance compares current allocation percentages against the
// target and returns one suggestion per symbol whose drift exceeds the
// threshold (in percentage points). Suggestions are ordered by symbol
// for stable output.
func SuggestRebalance(current, target map[string]float64, threshold float64) []string {
	symbols := make(map[string]struct{}, len(current)+len(target))
	for s := range current {
		symbols[s] = struct{}{}
	}
	for s := range target {
		symbols[s] = struct{}{}
	}

	ordered := make([]string, 0, len(symbols))
	for s := range symbols {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	var suggestions []string
	for _, symbol := range ordered {
		cur := current[symbol]
		tgt := target[symbol]
		drift := cur - tgt
		if drift < 0 {
			drift = -drift
		}
		if drift <= threshold {
			continue
		}
		if cur > tgt {
			suggestions = append(suggestions, fmt.Sprintf("Reduce %s by %.1f%% (drift from target)", symbol, drift))
		} else {
			suggestions = append(suggestions, fmt.Sprintf("Increase %s by %.1f%% (drift from target)", symbol, drift))
		}
	}
	return suggestions
}
