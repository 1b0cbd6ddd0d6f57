package statarb

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/pkg/formulas"
)

const (
	// DefaultMaxEntryPairs limits entry signals to the most statistically
	// confident pairs by p-value.
	DefaultMaxEntryPairs = 5

	// entryThreshold is the |z| at which a spread is stretched enough to
	// trade.
	entryThreshold = 2.0

	// scanPeriod is the price window used for the spread statistics.
	scanPeriod = "60d"
)

// Signals is the scanner output for one cycle. Entries are tickers to
// buy, Exits tickers to liquidate, Universe every ticker appearing in
// the loaded pair table (used for position cleanup).
type Signals struct {
	Entries  []string
	Exits    []string
	Universe map[string]bool
}

// Scanner computes spread z-scores for the pair table each cycle.
type Scanner struct {
	market        domain.MarketDataProvider
	maxEntryPairs int
	log           zerolog.Logger
}

// NewScanner creates a pair scanner. A non-positive maxEntryPairs falls
// back to the default.
func NewScanner(market domain.MarketDataProvider, maxEntryPairs int, log zerolog.Logger) *Scanner {
	if maxEntryPairs <= 0 {
		maxEntryPairs = DefaultMaxEntryPairs
	}
	return &Scanner{
		market:        market,
		maxEntryPairs: maxEntryPairs,
		log:           log.With().Str("component", "statarb_scanner").Logger(),
	}
}

// ZScore measures how far the current spread sits from its window mean,
// in standard deviations. A zero-dispersion spread reads as equilibrium.
func ZScore(prices1, prices2 []float64, hedgeRatio float64) float64 {
	n := len(prices1)
	if len(prices2) < n {
		n = len(prices2)
	}
	if n < 2 {
		return 0
	}
	prices1 = prices1[len(prices1)-n:]
	prices2 = prices2[len(prices2)-n:]

	spread := make([]float64, n)
	for i := 0; i < n; i++ {
		spread[i] = prices1[i] - hedgeRatio*prices2[i]
	}

	mean, std := formulas.MeanStd(spread)
	if std == 0 {
		return 0
	}
	return (spread[n-1] - mean) / std
}

// Scan evaluates every pair and returns this cycle's signals.
//
// The universe covers both legs of every loaded pair, before any
// filtering: a position is only "outside the universe" when its ticker
// appears in no pair at all. Entry signals come only from the top
// pairs by ascending p-value: a deeply negative z means asset1 is
// cheap relative to asset2, a deeply positive z the reverse. A pair's
// rank is its row in the sorted table, so cross-market pairs and pairs
// with unusable price data still occupy their entry slot even though
// they produce no signals. Exit marks apply to all pairs: any pair at
// or past equilibrium marks its reverted leg. A ticker with a fresh
// entry signal is never simultaneously exited. A wholesale price-fetch
// failure is returned as an error; callers must not treat it as an
// empty universe.
func (s *Scanner) Scan(pairs []domain.PairRecord) (Signals, error) {
	signals := Signals{Universe: make(map[string]bool)}
	if len(pairs) == 0 {
		return signals, nil
	}

	ordered := make([]domain.PairRecord, len(pairs))
	copy(ordered, pairs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PValue < ordered[j].PValue
	})

	var tickers []string
	for _, pair := range ordered {
		for _, t := range []string{pair.Asset1, pair.Asset2} {
			if !signals.Universe[t] {
				signals.Universe[t] = true
				tickers = append(tickers, t)
			}
		}
	}

	closes, err := s.market.HourlyCloses(tickers, scanPeriod)
	if err != nil {
		s.log.Warn().Err(err).Msg("price fetch failed, no pair signals this cycle")
		return signals, err
	}

	buySet := make(map[string]bool)
	exitSet := make(map[string]bool)

	for rank, pair := range ordered {
		if domain.MarketSuffix(pair.Asset1) != domain.MarketSuffix(pair.Asset2) {
			s.log.Debug().
				Str("asset1", pair.Asset1).
				Str("asset2", pair.Asset2).
				Msg("skipping cross-market pair")
			continue
		}

		p1, ok1 := closes[pair.Asset1]
		p2, ok2 := closes[pair.Asset2]
		if !ok1 || !ok2 || len(p1) < 2 || len(p2) < 2 {
			s.log.Debug().
				Str("asset1", pair.Asset1).
				Str("asset2", pair.Asset2).
				Msg("missing price data, skipping pair")
			continue
		}

		z := ZScore(p1, p2, pair.HedgeRatio)

		if rank < s.maxEntryPairs {
			if z <= -entryThreshold {
				buySet[pair.Asset1] = true
				s.log.Info().
					Str("ticker", pair.Asset1).
					Float64("z", z).
					Msg("pair entry signal")
			} else if z >= entryThreshold {
				buySet[pair.Asset2] = true
				s.log.Info().
					Str("ticker", pair.Asset2).
					Float64("z", z).
					Msg("pair entry signal")
			}
		}

		if z >= 0 {
			exitSet[pair.Asset1] = true
		}
		if z <= 0 {
			exitSet[pair.Asset2] = true
		}
	}

	for ticker := range buySet {
		signals.Entries = append(signals.Entries, ticker)
	}
	for ticker := range exitSet {
		if !buySet[ticker] {
			signals.Exits = append(signals.Exits, ticker)
		}
	}
	sort.Strings(signals.Entries)
	sort.Strings(signals.Exits)

	return signals, nil
}
