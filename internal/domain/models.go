// Package domain defines the shared models and collaborator interfaces for
// the relative-value pipeline.
//
// A Security carries everything known about one ticker within a single scan
// cycle: provider info, sub-scores, the aggregated portfolio score, and the
// target weight assigned by the allocation engine. Records are created fresh
// each cycle and are immutable once weights are finalized and persisted;
// there is no cross-cycle identity beyond the ticker string.
package domain

import "time"

// Security represents one ticker's complete record for a scan cycle.
// Sub-score fields default to zero, which is also the neutral contribution
// for a missing signal.
type Security struct {
	Ticker      string `json:"ticker"` // Market-suffix encoded (e.g. "U96.SI", "0005.HK")
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`

	// Sub-scores
	QuantScore     float64 `json:"quant_score"`
	QualScore      float64 `json:"qual_score"`
	CatalystScore  float64 `json:"catalyst_score"`
	OrderScore     float64 `json:"order_score"`
	GovScore       float64 `json:"gov_score"`
	ValuationScore float64 `json:"valuation_score"`
	AdjValuation   float64 `json:"adj_valuation_score"`
	TechScore      float64 `json:"tech_score"`
	Trend          string  `json:"trend"`
	RSI            float64 `json:"rsi"`

	// Inputs to aggregation and allocation
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	AvgDailyValue *float64 `json:"avg_daily_value,omitempty"` // Avg daily traded value (volume * price)
	VolMultiplier float64  `json:"vol_multiplier"`

	// Derived
	PortfolioScore    float64 `json:"portfolio_score"`
	AdjPortfolioScore float64 `json:"adj_portfolio_score"` // May be negative
	LiquidityCap      float64 `json:"liquidity_cap"`       // Fraction in [0,1]
	TargetWeight      float64 `json:"target_weight"`       // Fraction in [0,1]

	// Report fields
	Decision          string   `json:"decision"`
	DecisionRationale string   `json:"decision_rationale"`
	PassedFactors     []string `json:"passed_factors,omitempty"`
	RiskFlags         []string `json:"risk_flags,omitempty"`
	ScenarioTriggers  []string `json:"scenario_triggers,omitempty"`
	CatalystTriggers  []string `json:"catalyst_triggers,omitempty"`
	Turnaround        bool     `json:"turnaround"`
}

// Position is a brokerage-held quantity for one ticker. The broker owns it;
// the reconciler only reads it and computes deltas.
type Position struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

// OrderAction is the direction of an order.
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// OrderIntent describes one order to transmit. Constructed per
// reconciliation, submitted once, never retried automatically.
type OrderIntent struct {
	Ticker      string      `json:"ticker"`
	Action      OrderAction `json:"action"`
	Quantity    float64     `json:"quantity"`
	LimitPrice  *float64    `json:"limit_price,omitempty"`
	TrailingPct *float64    `json:"trailing_pct,omitempty"`
	SignalType  string      `json:"signal_type"`
}

// DailyBar is one daily OHLCV price point.
type DailyBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PairRecord is one cointegrated pair discovered by the offline scan.
// PValue < 0.05 held at discovery time; staleness is not re-validated here.
type PairRecord struct {
	Asset1     string  `json:"asset_1"`
	Asset2     string  `json:"asset_2"`
	PValue     float64 `json:"p_value"`
	HedgeRatio float64 `json:"hedge_ratio"`
}

// Ratios holds the fundamental ratios extracted from provider info.
// Nil means the provider did not report the field (unknown, not zero).
type Ratios struct {
	PE            *float64
	ROE           *float64
	DebtToEquity  *float64
	Margin        *float64
	RevenueGrowth *float64
}

// SecurityInfo is the static per-ticker snapshot from the market data
// provider. Absence of any field is "unknown", never an error.
type SecurityInfo struct {
	Name          string
	Sector        string
	CurrentPrice  *float64
	AvgVolume     *float64
	DividendYield *float64
	Ratios        Ratios
}

// Contract is the broker's view of a tradable instrument.
type Contract struct {
	Ticker  string
	LotSize float64
}

// BrokerOrderResult is returned by the broker after an order is transmitted.
// Transmission is not a fill; fills are asynchronous and unconfirmed within
// the cycle.
type BrokerOrderResult struct {
	OrderID  string
	Ticker   string
	Action   OrderAction
	Quantity float64
	Price    float64
}

// MarketSuffix returns the exchange suffix of a ticker ("U96.SI" -> "SI"),
// or the empty string when the ticker carries no suffix.
func MarketSuffix(ticker string) string {
	for i := len(ticker) - 1; i >= 0; i-- {
		if ticker[i] == '.' {
			return ticker[i+1:]
		}
	}
	return ""
}

// BaseSymbol returns the ticker without its market suffix ("U96.SI" -> "U96").
func BaseSymbol(ticker string) string {
	for i := len(ticker) - 1; i >= 0; i-- {
		if ticker[i] == '.' {
			return ticker[:i]
		}
	}
	return ticker
}
