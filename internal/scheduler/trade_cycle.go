package scheduler

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/internal/modules/screener"
	"github.com/aristath/relval/internal/modules/statarb"
	"github.com/aristath/relval/internal/modules/trading"
)

// statArbEntryWeight is the fixed equity fraction risked per pair entry.
const statArbEntryWeight = 0.15

// Broker is the brokerage surface the cycle needs: the execution API
// plus explicit authentication.
type Broker interface {
	domain.BrokerClient
	Connect() error
}

// TradeCycleJob runs one full decision cycle: screen the universe,
// scan the pair table, then reconcile entries and exits against live
// positions in two phases.
type TradeCycleJob struct {
	log        zerolog.Logger
	market     domain.MarketDataProvider
	screener   *screener.Screener
	scanner    *statarb.Scanner
	reconciler *trading.Reconciler
	broker     Broker
	tickers    string
	pairs      string
}

// TradeCycleConfig holds dependencies for the trade cycle job.
type TradeCycleConfig struct {
	Log         zerolog.Logger
	Market      domain.MarketDataProvider
	Screener    *screener.Screener
	Scanner     *statarb.Scanner
	Reconciler  *trading.Reconciler
	Broker      Broker
	TickersFile string
	PairsFile   string
}

// NewTradeCycleJob creates a new trade cycle job.
func NewTradeCycleJob(cfg TradeCycleConfig) *TradeCycleJob {
	return &TradeCycleJob{
		log:        cfg.Log.With().Str("job", "trade_cycle").Logger(),
		market:     cfg.Market,
		screener:   cfg.Screener,
		scanner:    cfg.Scanner,
		reconciler: cfg.Reconciler,
		broker:     cfg.Broker,
		tickers:    cfg.TickersFile,
		pairs:      cfg.PairsFile,
	}
}

// Name returns the job name
func (j *TradeCycleJob) Name() string {
	return "trade_cycle"
}

// Run executes one cycle. Per-security failures are logged and skipped;
// only broker authentication failure before reconciliation is returned
// as an error.
func (j *TradeCycleJob) Run() error {
	j.log.Info().Msg("Starting trade cycle")
	start := time.Now()

	securities := j.runScreen()
	signals, scanned := j.runScan()

	if err := j.broker.Connect(); err != nil {
		j.log.Error().Err(err).Msg("Broker authentication failed, aborting cycle")
		return err
	}

	equity, err := j.broker.AccountEquity()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to fetch account equity, skipping reconciliation")
		return nil
	}

	j.executeEntries(securities, signals, equity)
	j.executeExits(securities, signals, scanned, equity)

	j.log.Info().
		Dur("duration", time.Since(start)).
		Msg("Trade cycle completed")
	return nil
}

// runScreen produces this cycle's screened securities with final target
// weights. Failures yield an empty screen, not an aborted cycle.
func (j *TradeCycleJob) runScreen() []*domain.Security {
	tickers, err := screener.LoadTickers(j.tickers)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.tickers).Msg("No ticker universe, skipping screen")
		return nil
	}

	securities, err := j.screener.Run(tickers)
	if err != nil {
		j.log.Error().Err(err).Msg("Screen failed")
		return nil
	}
	return securities
}

// runScan evaluates the cointegrated pair table. The second return
// reports whether a scan actually happened; cleanup liquidation is only
// valid against a real pair universe, so a missing table or a failed
// price fetch both disable phase 2.
func (j *TradeCycleJob) runScan() (statarb.Signals, bool) {
	pairs, err := statarb.LoadPairs(j.pairs)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.pairs).Msg("No pair table, skipping stat-arb scan")
		return statarb.Signals{}, false
	}

	signals, err := j.scanner.Scan(pairs)
	if err != nil {
		return statarb.Signals{}, false
	}
	return signals, true
}

// executeEntries is phase 1: screened target weights and stat-arb pair
// entries, against one positions snapshot.
func (j *TradeCycleJob) executeEntries(securities []*domain.Security, signals statarb.Signals, equity float64) {
	j.log.Info().Msg("Phase 1: entries")

	positions, err := j.broker.Positions()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to fetch positions, skipping entries")
		return
	}

	for _, sec := range securities {
		if sec.TargetWeight <= 0 {
			continue
		}
		price, ok := j.currentPrice(sec.Ticker)
		if !ok {
			continue
		}
		qty := quantityFor(positions, sec.Ticker)
		if err := j.reconciler.Execute(sec.Ticker, sec.TargetWeight, qty, equity, price, trading.SignalScreen); err != nil {
			j.log.Warn().Err(err).Str("ticker", sec.Ticker).Msg("Screen order failed")
		}
	}

	for _, ticker := range signals.Entries {
		qty := quantityFor(positions, ticker)
		if qty != 0 {
			j.log.Info().Str("ticker", ticker).Msg("Pair entry already held")
			continue
		}
		price, ok := j.currentPrice(ticker)
		if !ok {
			continue
		}
		if err := j.reconciler.Execute(ticker, statArbEntryWeight, 0, equity, price, trading.SignalStatArbEntry); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Pair entry failed")
		}
	}
}

// executeExits is phase 2: liquidate reverted pairs and positions that
// fell out of the combined universe, against a re-fetched snapshot.
func (j *TradeCycleJob) executeExits(securities []*domain.Security, signals statarb.Signals, scanned bool, equity float64) {
	if !scanned {
		return
	}
	j.log.Info().Msg("Phase 2: exits and cleanup")

	positions, err := j.broker.Positions()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to fetch positions, skipping exits")
		return
	}

	screened := make(map[string]bool, len(securities))
	for _, sec := range securities {
		screened[sec.Ticker] = true
	}
	exits := make(map[string]bool, len(signals.Exits))
	for _, ticker := range signals.Exits {
		exits[ticker] = true
	}

	for _, pos := range positions {
		if pos.Quantity <= 0 {
			continue
		}

		ticker := resolveTicker(pos.Ticker, signals.Universe)
		if screened[ticker] {
			// Screened holdings were reconciled in phase 1.
			continue
		}

		price, ok := j.currentPrice(ticker)
		if !ok {
			continue
		}

		switch {
		case !signals.Universe[ticker]:
			j.log.Info().Str("ticker", ticker).Msg("Position left the pair universe, liquidating")
			if err := j.reconciler.Execute(ticker, 0, pos.Quantity, equity, price, trading.SignalCleanup); err != nil {
				j.log.Warn().Err(err).Str("ticker", ticker).Msg("Cleanup order failed")
			}
		case exits[ticker]:
			j.log.Info().Str("ticker", ticker).Msg("Spread reverted, liquidating")
			if err := j.reconciler.Execute(ticker, 0, pos.Quantity, equity, price, trading.SignalStatArbExit); err != nil {
				j.log.Warn().Err(err).Str("ticker", ticker).Msg("Exit order failed")
			}
		default:
			j.log.Debug().Str("ticker", ticker).Msg("Spread has not reverted, holding")
		}
	}
}

func (j *TradeCycleJob) currentPrice(ticker string) (float64, bool) {
	info, err := j.market.Info(ticker)
	if err != nil || info == nil || info.CurrentPrice == nil || *info.CurrentPrice <= 0 {
		j.log.Warn().Str("ticker", ticker).Msg("No current price, skipping")
		return 0, false
	}
	return *info.CurrentPrice, true
}

// quantityFor matches a position to a ticker by full symbol first, then
// by base symbol without the market suffix.
func quantityFor(positions []domain.Position, ticker string) float64 {
	for _, pos := range positions {
		if pos.Ticker == ticker {
			return pos.Quantity
		}
	}
	base := domain.BaseSymbol(ticker)
	for _, pos := range positions {
		if domain.BaseSymbol(pos.Ticker) == base {
			return pos.Quantity
		}
	}
	return 0
}

// resolveTicker maps a broker position symbol back to a suffixed ticker.
// Unmatched numeric symbols are assumed Hong Kong listings, padded to
// five digits; everything else defaults to Singapore.
func resolveTicker(symbol string, universe map[string]bool) string {
	if universe[symbol] {
		return symbol
	}

	base := domain.BaseSymbol(symbol)
	for ticker := range universe {
		if strings.HasPrefix(ticker, base+".") {
			return ticker
		}
	}

	if domain.MarketSuffix(symbol) != "" {
		return symbol
	}
	if isDigits(base) {
		for len(base) < 5 {
			base = "0" + base
		}
		return base + ".HK"
	}
	return base + ".SI"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
