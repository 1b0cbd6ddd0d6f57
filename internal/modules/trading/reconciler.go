// Package trading maps target weights to executable brokerage orders:
// lot-aware quantity reconciliation, per-market limit pricing, an
// ATR-based trailing stop overlay and an earnings blackout guard.
package trading

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
)

// Signal type tags written to the trade log.
const (
	SignalScreen       = "screen"
	SignalStatArbEntry = "statarb_entry"
	SignalStatArbExit  = "statarb_exit"
	SignalCleanup      = "cleanup"
)

// Reconciler converts a target weight into at most one primary order per
// call, with an optional companion trailing stop on buys.
type Reconciler struct {
	broker   domain.BrokerClient
	overlay  *RiskOverlay
	blackout *EarningsBlackout
	tradeLog *TradeLog
	lotAware bool
	log      zerolog.Logger
}

// NewReconciler creates an order reconciler. overlay, blackout and
// tradeLog may be nil to disable the respective side behavior.
func NewReconciler(broker domain.BrokerClient, overlay *RiskOverlay, blackout *EarningsBlackout, tradeLog *TradeLog, lotAware bool, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		broker:   broker,
		overlay:  overlay,
		blackout: blackout,
		tradeLog: tradeLog,
		lotAware: lotAware,
		log:      log.With().Str("component", "reconciler").Logger(),
	}
}

// LotSize resolves the tradable lot for a ticker. Singapore names trade
// in board lots of 100; elsewhere the contract-reported lot applies,
// defaulting to single shares.
func LotSize(ticker string, contract *domain.Contract) float64 {
	if domain.MarketSuffix(ticker) == "SI" {
		return 100
	}
	if contract != nil && contract.LotSize > 0 {
		return contract.LotSize
	}
	return 1
}

// TargetQuantity is the lot-floored share count the target weight can
// afford at the given price.
func TargetQuantity(equity, targetWeight, price, lotSize float64) float64 {
	if price <= 0 || lotSize <= 0 {
		return 0
	}
	return math.Floor(equity*targetWeight/price/lotSize) * lotSize
}

// TickSize returns the minimum price increment for a market at a price
// level. The schedule steps finer for lower-priced names.
func TickSize(market string, price float64) float64 {
	switch market {
	case "SI":
		if price < 1 {
			return 0.001
		}
		return 0.01
	case "HK":
		switch {
		case price < 0.25:
			return 0.001
		case price < 0.50:
			return 0.005
		case price < 10:
			return 0.01
		case price < 20:
			return 0.02
		case price < 100:
			return 0.05
		case price < 200:
			return 0.10
		case price < 500:
			return 0.20
		default:
			return 0.50
		}
	default:
		return 0.01
	}
}

// LimitPrice computes the tick-rounded limit price for markets requiring
// price-limited orders: +1% for buys, -1% for sells. Other markets trade
// at market, signalled by a nil return.
func LimitPrice(ticker string, price float64, action domain.OrderAction) *float64 {
	market := domain.MarketSuffix(ticker)
	if market != "SI" && market != "HK" {
		return nil
	}

	offset := 1.01
	if action == domain.ActionSell {
		offset = 0.99
	}
	raw := price * offset

	tick := TickSize(market, raw)
	rounded := math.Round(raw/tick) * tick
	return &rounded
}

// Reconcile computes this cycle's order intent for one ticker. A nil
// intent means no trade is needed; the reason explains why.
func (r *Reconciler) Reconcile(ticker string, targetWeight, currentQty, equity, price float64, contract *domain.Contract, signalType string) (*domain.OrderIntent, string) {
	lot := 1.0
	if r.lotAware {
		lot = LotSize(ticker, contract)
	}

	targetQty := TargetQuantity(equity, targetWeight, price, lot)
	delta := targetQty - currentQty

	if delta == 0 {
		if targetQty == 0 && targetWeight > 0 {
			return nil, "allocation too small to afford one lot"
		}
		return nil, "target already achieved"
	}

	action := domain.ActionBuy
	if delta < 0 {
		action = domain.ActionSell
	}

	quantity := math.Floor(math.Abs(delta)/lot) * lot
	if quantity == 0 {
		return nil, "delta below one lot"
	}

	return &domain.OrderIntent{
		Ticker:     ticker,
		Action:     action,
		Quantity:   quantity,
		LimitPrice: LimitPrice(ticker, price, action),
		SignalType: signalType,
	}, ""
}

// Execute reconciles one ticker and transmits the resulting order, the
// optional trailing stop, and the trade log row. Buy intents inside an
// earnings blackout window are suppressed. Failures are logged and
// reported back; they never cascade past the one security.
func (r *Reconciler) Execute(ticker string, targetWeight, currentQty, equity, price float64, signalType string) error {
	contract, err := r.broker.ResolveContract(ticker)
	if err != nil {
		r.log.Warn().Err(err).Str("ticker", ticker).Msg("contract unresolvable, skipping")
		return err
	}

	intent, reason := r.Reconcile(ticker, targetWeight, currentQty, equity, price, contract, signalType)
	if intent == nil {
		r.log.Info().Str("ticker", ticker).Str("reason", reason).Msg("no order")
		return nil
	}

	if intent.Action == domain.ActionBuy && r.blackout != nil && r.blackout.Active(ticker) {
		r.log.Info().Str("ticker", ticker).Msg("buy suppressed by earnings blackout")
		return nil
	}

	if intent.Action == domain.ActionBuy && r.overlay != nil {
		intent.TrailingPct = r.overlay.TrailingStopPct(ticker, price)
	}

	if _, err := r.broker.PlaceOrder(*intent); err != nil {
		r.log.Error().Err(err).Str("ticker", ticker).Msg("order placement failed")
		return err
	}
	r.log.Info().
		Str("ticker", ticker).
		Str("action", string(intent.Action)).
		Float64("quantity", intent.Quantity).
		Str("signal", signalType).
		Msg("order transmitted")

	if intent.Action == domain.ActionBuy && intent.TrailingPct != nil {
		if _, err := r.broker.PlaceTrailingStop(ticker, intent.Quantity, *intent.TrailingPct); err != nil {
			r.log.Warn().Err(err).Str("ticker", ticker).Msg("trailing stop placement failed")
		}
	}

	if r.tradeLog != nil {
		if err := r.tradeLog.Append(TradeRecord{
			Ticker:      ticker,
			Action:      string(intent.Action),
			Quantity:    intent.Quantity,
			Price:       price,
			SignalType:  signalType,
			TrailingPct: intent.TrailingPct,
		}); err != nil {
			r.log.Warn().Err(err).Msg("trade log append failed")
		}
	}

	return nil
}
