package trading

import (
	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/pkg/formulas"
)

const (
	atrPeriod      = 14
	atrBarsPeriod  = "30d"
	maxTrailingPct = 20.0
)

// RiskOverlay derives trailing stop parameters for buy orders from
// recent volatility. When ATR cannot be computed, no stop is attached;
// there is no static fallback percentage.
type RiskOverlay struct {
	market domain.MarketDataProvider
	log    zerolog.Logger
}

// NewRiskOverlay creates the trailing stop calculator.
func NewRiskOverlay(market domain.MarketDataProvider, log zerolog.Logger) *RiskOverlay {
	return &RiskOverlay{
		market: market,
		log:    log.With().Str("component", "risk_overlay").Logger(),
	}
}

// TrailingStopPct returns the trailing percent for a buy: twice the
// 14-period ATR as a percentage of price, capped at 20. Nil means no
// trailing stop.
func (ro *RiskOverlay) TrailingStopPct(ticker string, price float64) *float64 {
	if price <= 0 {
		return nil
	}

	bars, err := ro.market.DailyBars(ticker, atrBarsPeriod)
	if err != nil || len(bars) == 0 {
		ro.log.Warn().Err(err).Str("ticker", ticker).Msg("no bars for ATR, skipping trailing stop")
		return nil
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		highs[i] = bar.High
		lows[i] = bar.Low
		closes[i] = bar.Close
	}

	atr := formulas.CalculateATR(highs, lows, closes, atrPeriod)
	if atr == nil || *atr <= 0 {
		ro.log.Debug().Str("ticker", ticker).Msg("ATR unavailable, skipping trailing stop")
		return nil
	}

	pct := 2 * *atr / price * 100
	if pct > maxTrailingPct {
		pct = maxTrailingPct
	}
	return &pct
}
