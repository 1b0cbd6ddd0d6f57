package scoring

import "github.com/aristath/relval/pkg/formulas"

// Trend labels for the moving-average regime.
const (
	TrendStrongUp   = "strong uptrend"
	TrendUp         = "uptrend"
	TrendDown       = "downtrend"
	TrendStrongDown = "strong downtrend"
	TrendNeutral    = "neutral"
)

// TechnicalResult carries the combined technical score, the trend label
// and the RSI reading used for it.
type TechnicalResult struct {
	Score float64
	Trend string
	RSI   float64
}

// TechnicalScore derives a moving-average regime score from daily closes,
// then tilts it by RSI extremes. Insufficient history yields a neutral
// result with RSI pinned to 50.
func TechnicalScore(closes []float64) TechnicalResult {
	sma50 := formulas.CalculateSMA(closes, 50)
	sma200 := formulas.CalculateSMA(closes, 200)
	rsi := formulas.CalculateRSI(closes, 14)

	if sma50 == nil || sma200 == nil || len(closes) == 0 {
		return TechnicalResult{Score: 0, Trend: TrendNeutral, RSI: 50}
	}

	last := closes[len(closes)-1]

	var score float64
	var trend string
	switch {
	case last > *sma50 && *sma50 > *sma200:
		score, trend = 2, TrendStrongUp
	case last > *sma200:
		score, trend = 1, TrendUp
	case last < *sma50 && *sma50 < *sma200:
		score, trend = -2, TrendStrongDown
	case last < *sma200:
		score, trend = -1, TrendDown
	default:
		score, trend = 0, TrendNeutral
	}

	rsiValue := 50.0
	if rsi != nil {
		rsiValue = *rsi
		if rsiValue < 30 {
			score++
		} else if rsiValue > 70 {
			score--
		}
	}

	return TechnicalResult{Score: score, Trend: trend, RSI: rsiValue}
}
