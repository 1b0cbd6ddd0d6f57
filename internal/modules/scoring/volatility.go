package scoring

import "github.com/aristath/relval/pkg/formulas"

// VolMultiplier maps a security's trailing 30-day annualized volatility
// to a position-sizing dampener. A bear regime tightens the multiplier a
// further 20% across the board.
func VolMultiplier(closes []float64, bearRegime bool) float64 {
	mult := 1.0

	if len(closes) >= 2 {
		window := closes
		if len(window) > 30 {
			window = window[len(window)-30:]
		}
		returns := formulas.Returns(window)
		annVol := formulas.AnnualizedVolatility(returns)

		switch {
		case annVol > 0.60:
			mult = 0.5
		case annVol > 0.40:
			mult = 0.75
		}
	}

	if bearRegime {
		mult *= 0.8
	}
	return mult
}
