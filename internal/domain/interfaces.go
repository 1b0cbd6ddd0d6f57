package domain

import "time"

// MarketDataProvider supplies per-ticker static info and historical bars.
// Implementations must treat missing provider fields as unknown (nil),
// not as errors; an error return means the fetch itself failed.
type MarketDataProvider interface {
	// Info returns the static snapshot for one ticker.
	Info(ticker string) (*SecurityInfo, error)

	// DailyBars returns daily OHLCV bars for the given period
	// (e.g. "30d", "90d", "1y"), oldest first.
	DailyBars(ticker string, period string) ([]DailyBar, error)

	// HourlyCloses returns hourly close prices for the given period for a
	// set of tickers, aligned by timestamp. Tickers with no data are absent
	// from the result map.
	HourlyCloses(tickers []string, period string) (map[string][]float64, error)

	// NextEarnings returns the next scheduled earnings timestamp, or nil
	// when none is known.
	NextEarnings(ticker string) (*time.Time, error)
}

// NewsProvider returns recent headlines for a ticker.
type NewsProvider interface {
	Headlines(ticker string, limit int) ([]string, error)
}

// SentimentAnalyzer scores a single headline's tone in [-1, 1].
// The natural-language model behind it is an external collaborator.
type SentimentAnalyzer interface {
	Compound(headline string) float64
}

// BrokerClient is the brokerage execution API. Orders are transmitted, not
// confirmed filled, within a cycle.
type BrokerClient interface {
	Connected() bool
	AccountEquity() (float64, error)
	Positions() ([]Position, error)
	ResolveContract(ticker string) (*Contract, error)
	PlaceOrder(intent OrderIntent) (*BrokerOrderResult, error)
	PlaceTrailingStop(ticker string, quantity, trailingPct float64) (*BrokerOrderResult, error)
}
