package marketdata

// DefaultPeriod is used when a query does not specify a lookback window.
const DefaultPeriod = "1y"

// periodDays maps lookback period tokens to calendar days.
var periodDays = map[string]int{
	"1d":  1,
	"5d":  5,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
}

// PeriodDays resolves a period token to calendar days. Unknown tokens
// resolve to the default period's span.
func PeriodDays(period string) int {
	if days, ok := periodDays[period]; ok {
		return days
	}
	return periodDays[DefaultPeriod]
}

// ValidPeriod reports whether the token is a recognized lookback period.
func ValidPeriod(period string) bool {
	_, ok := periodDays[period]
	return ok
}
