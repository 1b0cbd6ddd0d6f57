// Package backtest replays a fixed weight vector against historical
// monthly returns and reports return, volatility and drawdown statistics.
package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/pkg/formulas"
)

// monthsPerYear is the compounding frequency of the replay.
const monthsPerYear = 12.0

// Result holds the statistics of one backtest run.
type Result struct {
	MonthlyReturns       []float64
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	Drawdown             formulas.DrawdownResult
	// AdjustedRatio is annualized return over annualized volatility
	// times absolute max drawdown. A drawdown-free series yields +Inf.
	AdjustedRatio float64

	BenchmarkTotalReturn float64
	HasBenchmark         bool
}

// Evaluator replays target weights over historical bars.
type Evaluator struct {
	market domain.MarketDataProvider
	log    zerolog.Logger
}

// NewEvaluator creates a backtest evaluator.
func NewEvaluator(market domain.MarketDataProvider, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		market: market,
		log:    log.With().Str("component", "backtest").Logger(),
	}
}

// Run fetches each weighted ticker's history over the period (e.g. "1y"),
// resamples it to month-end closes, and replays the weight vector. The
// benchmark, when non-empty, is replayed alongside for comparison.
// Tickers whose history cannot be fetched are dropped from the replay
// with their weight, which understates rather than distorts performance.
func (e *Evaluator) Run(weights map[string]float64, period, benchmark string) (*Result, error) {
	monthly := make(map[string][]float64)
	minMonths := -1

	tickers := make([]string, 0, len(weights))
	for ticker := range weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		if weights[ticker] <= 0 {
			continue
		}
		returns, err := e.monthlyReturns(ticker, period)
		if err != nil {
			e.log.Warn().Err(err).Str("ticker", ticker).Msg("dropping ticker from backtest")
			continue
		}
		monthly[ticker] = returns
		if minMonths < 0 || len(returns) < minMonths {
			minMonths = len(returns)
		}
	}

	if len(monthly) == 0 || minMonths < 1 {
		return nil, fmt.Errorf("no usable return history for backtest")
	}

	portfolio := make([]float64, minMonths)
	for ticker, returns := range monthly {
		aligned := returns[len(returns)-minMonths:]
		for i, r := range aligned {
			portfolio[i] += weights[ticker] * r
		}
	}

	result := Stats(portfolio)

	if benchmark != "" {
		benchReturns, err := e.monthlyReturns(benchmark, period)
		if err != nil {
			e.log.Warn().Err(err).Str("ticker", benchmark).Msg("benchmark history unavailable")
		} else {
			total := 1.0
			for _, r := range benchReturns {
				total *= 1 + r
			}
			result.BenchmarkTotalReturn = total - 1
			result.HasBenchmark = true
		}
	}

	return result, nil
}

// monthlyReturns resamples daily bars to last-close-of-month returns.
func (e *Evaluator) monthlyReturns(ticker, period string) ([]float64, error) {
	bars, err := e.market.DailyBars(ticker, period)
	if err != nil {
		return nil, err
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("insufficient history for %s", ticker)
	}

	var monthEnds []float64
	for i, bar := range bars {
		last := i == len(bars)-1
		if last || bars[i+1].Date.Month() != bar.Date.Month() || bars[i+1].Date.Year() != bar.Date.Year() {
			monthEnds = append(monthEnds, bar.Close)
		}
	}

	returns := formulas.Returns(monthEnds)
	if len(returns) == 0 {
		return nil, fmt.Errorf("insufficient monthly history for %s", ticker)
	}
	return returns, nil
}

// Stats computes the full statistics block from a monthly return series.
func Stats(monthlyReturns []float64) *Result {
	total := 1.0
	for _, r := range monthlyReturns {
		total *= 1 + r
	}
	totalReturn := total - 1

	annualized := 0.0
	if total > 0 {
		annualized = math.Pow(total, monthsPerYear/float64(len(monthlyReturns))) - 1
	} else {
		annualized = -1
	}

	_, std := formulas.MeanStd(monthlyReturns)
	annVol := std * math.Sqrt(monthsPerYear)

	dd := formulas.Drawdown(monthlyReturns)

	ratio := math.Inf(1)
	if dd.MaxDrawdown != 0 && annVol != 0 {
		ratio = annualized / (annVol * math.Abs(dd.MaxDrawdown))
	}

	return &Result{
		MonthlyReturns:       monthlyReturns,
		TotalReturn:          totalReturn,
		AnnualizedReturn:     annualized,
		AnnualizedVolatility: annVol,
		Drawdown:             dd,
		AdjustedRatio:        ratio,
	}
}
