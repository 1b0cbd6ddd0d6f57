package allocation

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/clientdata"
	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/pkg/formulas"
)

const (
	// DefaultCorrelationCutoff marks a pair as near-duplicate exposure.
	DefaultCorrelationCutoff = 0.80

	// DefaultPenaltyFactor scales down the lower-ranked member of each
	// correlated pair. Penalties compound across pairs.
	DefaultPenaltyFactor = 0.50

	// correlationPeriod is the lookback for the return series.
	correlationPeriod = "90d"
)

// corrMatrixBlob is the cached pairwise correlation matrix. Tickers is
// sorted and Matrix is indexed by position in Tickers.
type corrMatrixBlob struct {
	Tickers []string    `msgpack:"tickers"`
	Matrix  [][]float64 `msgpack:"matrix"`
}

func (b *corrMatrixBlob) lookup(t1, t2 string) (float64, bool) {
	i := sort.SearchStrings(b.Tickers, t1)
	j := sort.SearchStrings(b.Tickers, t2)
	if i >= len(b.Tickers) || b.Tickers[i] != t1 || j >= len(b.Tickers) || b.Tickers[j] != t2 {
		return 0, false
	}
	return b.Matrix[i][j], true
}

// Deduplicator applies the correlation penalty to target weights after
// the constraint engine has run. A failed data fetch never blocks the
// pipeline: tickers without usable return series simply skip the penalty.
type Deduplicator struct {
	market  domain.MarketDataProvider
	cache   *clientdata.Repository
	cutoff  float64
	penalty float64
	log     zerolog.Logger
}

// NewDeduplicator creates a correlation deduplicator. Non-positive cutoff
// or penalty values fall back to the defaults.
func NewDeduplicator(market domain.MarketDataProvider, cache *clientdata.Repository, cutoff, penalty float64, log zerolog.Logger) *Deduplicator {
	if cutoff <= 0 {
		cutoff = DefaultCorrelationCutoff
	}
	if penalty <= 0 {
		penalty = DefaultPenaltyFactor
	}
	return &Deduplicator{
		market:  market,
		cache:   cache,
		cutoff:  cutoff,
		penalty: penalty,
		log:     log.With().Str("component", "correlation").Logger(),
	}
}

// Apply penalizes the target weight of the lower-ranked member of every
// highly correlated pair, compounding when a security appears in several
// pairs, then renormalizes the surviving weights to sum to one. When no
// correlation matrix can be built the input weights pass through
// unmodified.
func (d *Deduplicator) Apply(securities []*domain.Security) {
	if len(securities) < 2 {
		return
	}

	tickers := make([]string, 0, len(securities))
	for _, sec := range securities {
		tickers = append(tickers, sec.Ticker)
	}
	sort.Strings(tickers)

	matrix := d.matrixFor(tickers)
	if matrix == nil {
		return
	}

	ordered := make([]*domain.Security, len(securities))
	copy(ordered, securities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AdjPortfolioScore > ordered[j].AdjPortfolioScore
	})

	penalized := false
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			corr, ok := matrix.lookup(ordered[i].Ticker, ordered[j].Ticker)
			if !ok || corr <= d.cutoff {
				continue
			}
			d.log.Info().
				Str("kept", ordered[i].Ticker).
				Str("penalized", ordered[j].Ticker).
				Float64("correlation", corr).
				Msg("correlated pair, penalizing lower-ranked security")
			ordered[j].TargetWeight *= d.penalty
			penalized = true
		}
	}

	if !penalized {
		return
	}

	total := 0.0
	for _, sec := range securities {
		total += sec.TargetWeight
	}
	if total == 0 {
		return
	}
	for _, sec := range securities {
		sec.TargetWeight /= total
	}
}

// matrixFor returns the pairwise correlation matrix for the sorted ticker
// list, from cache when fresh. Returns nil when no usable return series
// could be built at all.
func (d *Deduplicator) matrixFor(tickers []string) *corrMatrixBlob {
	key := strings.Join(tickers, ",")

	var cached corrMatrixBlob
	if d.cache != nil {
		fresh, err := d.cache.GetBinaryIfFresh("corr_matrix", key, &cached)
		if err != nil {
			d.log.Warn().Err(err).Msg("correlation cache read failed")
		} else if fresh {
			return &cached
		}
	}

	series := make(map[string][]float64, len(tickers))
	minLen := -1
	for _, ticker := range tickers {
		bars, err := d.market.DailyBars(ticker, correlationPeriod)
		if err != nil || len(bars) < 3 {
			d.log.Warn().Err(err).Str("ticker", ticker).
				Msg("no return series for correlation, skipping penalty for ticker")
			continue
		}
		closes := make([]float64, len(bars))
		for i, bar := range bars {
			closes[i] = bar.Close
		}
		returns := formulas.Returns(closes)
		series[ticker] = returns
		if minLen < 0 || len(returns) < minLen {
			minLen = len(returns)
		}
	}

	if len(series) < 2 || minLen < 2 {
		d.log.Warn().Msg("insufficient data for correlation matrix, bypassing penalty")
		return nil
	}

	// Align every series to the same trailing window.
	covered := make([]string, 0, len(series))
	for _, ticker := range tickers {
		if returns, ok := series[ticker]; ok {
			series[ticker] = returns[len(returns)-minLen:]
			covered = append(covered, ticker)
		}
	}

	matrix := &corrMatrixBlob{
		Tickers: covered,
		Matrix:  make([][]float64, len(covered)),
	}
	for i := range covered {
		matrix.Matrix[i] = make([]float64, len(covered))
		matrix.Matrix[i][i] = 1
	}
	for i := 0; i < len(covered); i++ {
		for j := i + 1; j < len(covered); j++ {
			corr := formulas.Correlation(series[covered[i]], series[covered[j]])
			matrix.Matrix[i][j] = corr
			matrix.Matrix[j][i] = corr
		}
	}

	if d.cache != nil {
		if err := d.cache.StoreBinary("corr_matrix", key, matrix, clientdata.TTLCorrMatrix); err != nil {
			d.log.Warn().Err(err).Msg("correlation cache write failed")
		}
	}
	return matrix
}
