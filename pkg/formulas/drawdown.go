package formulas

// DrawdownResult holds the drawdown series derived from a return series.
type DrawdownResult struct {
	Series      []float64 // Drawdown per period (0 or negative)
	MaxDrawdown float64   // Minimum of Series (most negative value)
	MaxDuration int       // Longest consecutive run of negative drawdown
}

// Drawdown computes the drawdown series of a period-return series: the
// cumulative value divided by its running peak, minus one.
func Drawdown(returns []float64) DrawdownResult {
	if len(returns) == 0 {
		return DrawdownResult{}
	}

	series := make([]float64, len(returns))
	cumulative := 1.0
	peak := 0.0
	maxDD := 0.0

	for i, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := 0.0
		if peak > 0 {
			dd = cumulative/peak - 1
		}
		series[i] = dd
		if dd < maxDD {
			maxDD = dd
		}
	}

	return DrawdownResult{
		Series:      series,
		MaxDrawdown: maxDD,
		MaxDuration: longestNegativeRun(series),
	}
}

func longestNegativeRun(series []float64) int {
	longest, current := 0, 0
	for _, dd := range series {
		if dd < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
