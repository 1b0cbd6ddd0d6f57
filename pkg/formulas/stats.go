package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Returns converts a price series into simple period-over-period returns.
// Periods with a non-positive previous price are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

// MeanStd returns the mean and sample standard deviation of a series.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, variance := stat.MeanVariance(values, nil)
	if variance < 0 || math.IsNaN(variance) {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}

// AnnualizedVolatility scales a daily return standard deviation to a yearly
// figure assuming 252 trading days.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	_, std := MeanStd(dailyReturns)
	return std * math.Sqrt(252)
}

// Correlation returns the Pearson correlation between two equal-length
// return series. Zero-variance series correlate at 0.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}
