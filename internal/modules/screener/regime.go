// Package screener runs the full per-cycle security screen: market
// regime detection, per-ticker sub-scoring, the decision ladder, and the
// allocation pass that produces target weights and the screen report.
package screener

import (
	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/pkg/formulas"
)

// Regime labels the benchmark's broad market state.
type Regime string

const (
	RegimeBull Regime = "BULL"
	RegimeBear Regime = "BEAR"
)

// DetectRegime compares the benchmark's last close against its 200-day
// moving average over one year of history. Insufficient or unfetchable
// history defaults to bull so a data outage never tightens the whole
// book.
func DetectRegime(market domain.MarketDataProvider, benchmark string, log zerolog.Logger) Regime {
	bars, err := market.DailyBars(benchmark, "1y")
	if err != nil {
		log.Warn().Err(err).Str("benchmark", benchmark).Msg("regime detection failed, defaulting to bull")
		return RegimeBull
	}
	if len(bars) < 200 {
		return RegimeBull
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	ma200 := formulas.CalculateSMA(closes, 200)
	if ma200 == nil {
		return RegimeBull
	}
	if closes[len(closes)-1] > *ma200 {
		return RegimeBull
	}
	return RegimeBear
}
