package screener

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/internal/modules/allocation"
	"github.com/aristath/relval/internal/modules/scoring"
)

// Options are the screener's strategy flags. One configurable strategy
// covers both the plain and the technical/correlation-aware variants.
type Options struct {
	TechnicalSignals   bool
	CorrelationPenalty bool
	Benchmark          string
	ScreenFile         string
	HeadlineLimit      int
}

// Screener drives one full scan cycle over the ticker universe.
type Screener struct {
	market    domain.MarketDataProvider
	news      domain.NewsProvider
	sentiment domain.SentimentAnalyzer
	allocator *allocation.Allocator
	dedup     *allocation.Deduplicator
	opts      Options
	log       zerolog.Logger
}

// New creates a screener. dedup may be nil; it is only consulted when the
// correlation penalty option is on.
func New(market domain.MarketDataProvider, news domain.NewsProvider, sentiment domain.SentimentAnalyzer, allocator *allocation.Allocator, dedup *allocation.Deduplicator, opts Options, log zerolog.Logger) *Screener {
	if opts.HeadlineLimit <= 0 {
		opts.HeadlineLimit = 15
	}
	return &Screener{
		market:    market,
		news:      news,
		sentiment: sentiment,
		allocator: allocator,
		dedup:     dedup,
		opts:      opts,
		log:       log.With().Str("component", "screener").Logger(),
	}
}

// LoadTickers reads the ticker universe file, one symbol per line. Blank
// lines and lines starting with '#' are skipped.
func LoadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tickers file: %w", err)
	}
	defer f.Close()

	var tickers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tickers = append(tickers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tickers file: %w", err)
	}
	return tickers, nil
}

// Run screens the universe, allocates target weights, and writes the
// screen results file when configured. A failure in one security is
// logged and that security skipped; only an empty universe is an error.
func (s *Screener) Run(tickers []string) ([]*domain.Security, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("empty ticker universe")
	}

	regime := DetectRegime(s.market, s.opts.Benchmark, s.log)
	bear := regime == RegimeBear
	s.log.Info().Str("regime", string(regime)).Int("universe", len(tickers)).Msg("starting screen")

	var securities []*domain.Security
	for _, ticker := range tickers {
		sec, err := s.screenOne(ticker, bear)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("skipping security")
			continue
		}
		securities = append(securities, sec)
	}
	if len(securities) == 0 {
		return nil, fmt.Errorf("no securities screened successfully")
	}

	s.allocator.Allocate(securities)
	if s.opts.CorrelationPenalty && s.dedup != nil {
		s.dedup.Apply(securities)
	}

	if s.opts.ScreenFile != "" {
		if err := WriteScreen(s.opts.ScreenFile, securities); err != nil {
			s.log.Error().Err(err).Msg("failed to write screen results")
		} else {
			s.log.Info().Str("path", s.opts.ScreenFile).Msg("screen results written")
		}
	}

	return securities, nil
}

// screenOne builds the complete record for a single ticker.
func (s *Screener) screenOne(ticker string, bear bool) (*domain.Security, error) {
	info, err := s.market.Info(ticker)
	if err != nil {
		return nil, fmt.Errorf("info fetch failed: %w", err)
	}

	sec := &domain.Security{
		Ticker:        ticker,
		CompanyName:   info.Name,
		Sector:        info.Sector,
		DividendYield: info.DividendYield,
		VolMultiplier: 1.0,
		Trend:         scoring.TrendNeutral,
		RSI:           50,
	}
	if sec.CompanyName == "" {
		sec.CompanyName = ticker
	}
	if sec.Sector == "" {
		sec.Sector = "Unknown"
	}
	if info.AvgVolume != nil && info.CurrentPrice != nil {
		adv := *info.AvgVolume * *info.CurrentPrice
		sec.AvgDailyValue = &adv
	}

	sec.QuantScore = scoring.QuantScore(info.Ratios, sec.Sector)
	sec.PassedFactors = scoring.FactorBreakdown(info.Ratios, sec.Sector)
	sec.RiskFlags = scoring.RiskFlags(info.Ratios)
	sec.ScenarioTriggers = scoring.ScenarioTriggers(info.Ratios)
	sec.Turnaround = scoring.TurnaroundFlag(info.Ratios)

	sec.ValuationScore = scoring.ValuationScore(info.Ratios.PE, scoring.MedianPEForSector(sec.Sector))
	divAdj := scoring.DividendAdjustment(info.DividendYield)
	sec.AdjValuation = scoring.AdjustedValuation(sec.ValuationScore, divAdj, bear)

	headlines := s.fetchHeadlines(ticker)
	hl := headlines.Or(nil)
	if !headlines.Available {
		s.log.Debug().Str("ticker", ticker).Str("reason", headlines.Reason).
			Msg("headlines unavailable, neutral news scores")
	}

	sec.CatalystScore, sec.CatalystTriggers = scoring.CatalystScore(hl)
	var orderSignal string
	sec.OrderScore, orderSignal = scoring.OrderMomentum(hl)
	sentiment, eventCount := scoring.SentimentScore(s.sentiment, hl)
	sec.QualScore = scoring.QualScore(sentiment, eventCount)
	sec.GovScore = scoring.GovScore(sec.Sector, hl)

	if s.opts.TechnicalSignals {
		closes := s.fetchCloses(ticker)
		tech := scoring.TechnicalScore(closes.Or(nil))
		sec.TechScore = tech.Score
		sec.Trend = tech.Trend
		sec.RSI = tech.RSI
		sec.VolMultiplier = scoring.VolMultiplier(closes.Or(nil), bear)
	}

	sec.LiquidityCap = scoring.LiquidityCap(sec.AvgDailyValue)

	techComponent := 0.0
	if s.opts.TechnicalSignals {
		techComponent = sec.TechScore
	}
	sec.PortfolioScore = scoring.PortfolioScore(
		sec.QuantScore, sec.QualScore, sec.CatalystScore, sec.OrderScore,
		sec.GovScore, sec.AdjValuation, techComponent,
	)
	sec.AdjPortfolioScore = scoring.AdjustedPortfolioScore(sec.PortfolioScore, sec.DividendYield, sec.VolMultiplier)

	sec.Decision, sec.DecisionRationale = Decide(sec, orderSignal)

	return sec, nil
}

func (s *Screener) fetchHeadlines(ticker string) domain.Fetch[[]string] {
	if s.news == nil {
		return domain.Unavailable[[]string]("no news provider configured")
	}
	headlines, err := s.news.Headlines(ticker, s.opts.HeadlineLimit)
	if err != nil {
		return domain.Unavailable[[]string](err.Error())
	}
	return domain.Ok(headlines)
}

func (s *Screener) fetchCloses(ticker string) domain.Fetch[[]float64] {
	bars, err := s.market.DailyBars(ticker, "1y")
	if err != nil {
		return domain.Unavailable[[]float64](err.Error())
	}
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return domain.Ok(closes)
}
