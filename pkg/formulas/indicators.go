// Package formulas provides the numeric building blocks shared by the
// scoring, risk and backtest modules.
package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index.
//
// RSI = 100 - (100 / (1 + RS)), RS = avg gain / avg loss over N periods.
// Returns the current value (0-100) or nil if there is not enough data.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// CalculateSMA returns the current simple moving average over the given
// window, or nil if there is not enough data.
func CalculateSMA(closes []float64, window int) *float64 {
	if len(closes) < window {
		return nil
	}

	sma := talib.Sma(closes, window)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// CalculateATR calculates the current Average True Range over the given
// period from OHLC series. Returns nil when the series is too short for
// the period.
func CalculateATR(highs, lows, closes []float64, period int) *float64 {
	if len(closes) < period+1 || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	atr := talib.Atr(highs, lows, closes, period)
	if len(atr) > 0 && !isNaN(atr[len(atr)-1]) && atr[len(atr)-1] > 0 {
		result := atr[len(atr)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
