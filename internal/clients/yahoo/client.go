// Package yahoo implements the market data provider on top of Yahoo
// Finance, with cache-first reads backed by the client data repository.
// A missing provider field is unknown (nil), never an error; stale cache
// entries are served when a live fetch fails.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/aristath/relval/internal/clientdata"
	"github.com/aristath/relval/internal/domain"
)

const earningsEndpoint = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=calendarEvents"

// Client fetches per-ticker info, bars and earnings dates from Yahoo.
type Client struct {
	cache *clientdata.Repository
	http  *http.Client
	log   zerolog.Logger
}

// NewClient creates a Yahoo market data client. cache may be nil, which
// disables caching entirely (every call hits the provider).
func NewClient(cache *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		cache: cache,
		http:  &http.Client{Timeout: 15 * time.Second},
		log:   log.With().Str("client", "yahoo").Logger(),
	}
}

// Info returns the static snapshot for one ticker. The average volume is
// derived from a month of daily bars since the quote payload does not
// carry it reliably.
func (c *Client) Info(symbol string) (*domain.SecurityInfo, error) {
	var cached domain.SecurityInfo
	if c.fresh("yahoo_info", symbol, &cached) {
		return &cached, nil
	}

	info, err := c.fetchInfo(symbol)
	if err != nil {
		if c.stale("yahoo_info", symbol, &cached) {
			c.log.Warn().Err(err).Str("ticker", symbol).Msg("info fetch failed, serving stale cache")
			return &cached, nil
		}
		return nil, err
	}

	c.store("yahoo_info", symbol, info, clientdata.TTLInfo)
	return info, nil
}

func (c *Client) fetchInfo(symbol string) (*domain.SecurityInfo, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker %s: %w", symbol, err)
	}
	defer t.Close()

	raw, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info for %s: %w", symbol, err)
	}

	info := &domain.SecurityInfo{}
	if raw.LongName != "" {
		info.Name = raw.LongName
	} else if raw.ShortName != "" {
		info.Name = raw.ShortName
	}
	info.Sector = raw.Industry

	if raw.CurrentPrice > 0 {
		price := raw.CurrentPrice
		info.CurrentPrice = &price
	} else if raw.RegularMarketPreviousClose > 0 {
		price := raw.RegularMarketPreviousClose
		info.CurrentPrice = &price
	}
	if raw.DividendYield > 0 {
		yield := raw.DividendYield
		info.DividendYield = &yield
	}

	// Copy to locals before taking addresses in case the library reuses
	// internal buffers.
	if raw.TrailingPE != 0 {
		pe := raw.TrailingPE
		info.Ratios.PE = &pe
	}
	if raw.ReturnOnEquity != 0 {
		roe := raw.ReturnOnEquity
		info.Ratios.ROE = &roe
	}
	if raw.DebtToEquity > 0 {
		d2e := raw.DebtToEquity
		info.Ratios.DebtToEquity = &d2e
	}
	if raw.ProfitMargins != 0 {
		margin := raw.ProfitMargins
		info.Ratios.Margin = &margin
	}
	if raw.RevenueGrowth != 0 {
		growth := raw.RevenueGrowth
		info.Ratios.RevenueGrowth = &growth
	}

	if avg := c.averageVolume(symbol); avg != nil {
		info.AvgVolume = avg
	}

	return info, nil
}

// averageVolume is the mean daily volume over the last month of bars.
func (c *Client) averageVolume(symbol string) *float64 {
	bars, err := c.DailyBars(symbol, "30d")
	if err != nil || len(bars) == 0 {
		return nil
	}
	total := 0.0
	for _, bar := range bars {
		total += float64(bar.Volume)
	}
	avg := total / float64(len(bars))
	return &avg
}

// DailyBars returns daily OHLCV bars for the period, oldest first.
func (c *Client) DailyBars(symbol, period string) ([]domain.DailyBar, error) {
	key := symbol + ":" + period

	var cached []domain.DailyBar
	if c.fresh("yahoo_daily", key, &cached) {
		return cached, nil
	}

	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker %s: %w", symbol, err)
	}
	defer t.Close()

	raw, err := t.History(models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		if c.stale("yahoo_daily", key, &cached) {
			c.log.Warn().Err(err).Str("ticker", symbol).Msg("history fetch failed, serving stale cache")
			return cached, nil
		}
		return nil, fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	bars := make([]domain.DailyBar, 0, len(raw))
	for _, bar := range raw {
		bars = append(bars, domain.DailyBar{
			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}

	c.store("yahoo_daily", key, bars, clientdata.TTLDailyBars)
	return bars, nil
}

// HourlyCloses batch-downloads hourly closes for a set of tickers.
// Tickers whose download failed are absent from the result.
func (c *Client) HourlyCloses(tickers []string, period string) (map[string][]float64, error) {
	if len(tickers) == 0 {
		return map[string][]float64{}, nil
	}
	key := strings.Join(tickers, ",") + ":" + period

	var cached map[string][]float64
	if c.fresh("yahoo_hourly", key, &cached) {
		return cached, nil
	}

	params := models.DefaultDownloadParams()
	params.Symbols = tickers
	params.Period = period
	params.Interval = "1h"

	result, err := multi.Download(tickers, &params)
	if err != nil {
		if c.stale("yahoo_hourly", key, &cached) {
			c.log.Warn().Err(err).Msg("batch download failed, serving stale cache")
			return cached, nil
		}
		return nil, fmt.Errorf("failed to download hourly closes: %w", err)
	}

	closes := make(map[string][]float64, len(tickers))
	for _, symbol := range tickers {
		if bars, ok := result.Data[symbol]; ok && len(bars) > 0 {
			series := make([]float64, len(bars))
			for i, bar := range bars {
				series[i] = bar.Close
			}
			closes[symbol] = series
		} else if downloadErr, ok := result.Errors[symbol]; ok {
			c.log.Warn().Err(downloadErr).Str("ticker", symbol).Msg("no hourly data for ticker")
		}
	}

	c.store("yahoo_hourly", key, closes, clientdata.TTLHourlyCloses)
	return closes, nil
}

// earningsPayload mirrors the quoteSummary calendarEvents response shape.
type earningsPayload struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []struct {
						Raw int64 `json:"raw"`
					} `json:"earningsDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// cachedEarnings wraps the nullable date for the cache blob.
type cachedEarnings struct {
	Next *time.Time `json:"next"`
}

// NextEarnings returns the next scheduled earnings timestamp, nil when
// none is published.
func (c *Client) NextEarnings(symbol string) (*time.Time, error) {
	var cached cachedEarnings
	if c.fresh("earnings_dates", symbol, &cached) {
		return cached.Next, nil
	}

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf(earningsEndpoint, symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build earnings request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earnings dates for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("earnings dates request for %s returned %d", symbol, resp.StatusCode)
	}

	var payload earningsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode earnings payload for %s: %w", symbol, err)
	}

	var next *time.Time
	if len(payload.QuoteSummary.Result) > 0 {
		dates := payload.QuoteSummary.Result[0].CalendarEvents.Earnings.EarningsDate
		if len(dates) > 0 && dates[0].Raw > 0 {
			ts := time.Unix(dates[0].Raw, 0).UTC()
			next = &ts
		}
	}

	c.store("earnings_dates", symbol, cachedEarnings{Next: next}, clientdata.TTLEarningsDates)
	return next, nil
}

// fresh loads a fresh cache entry into dest, reporting whether it hit.
func (c *Client) fresh(table, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.GetIfFresh(table, key)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("cache read failed")
		return false
	}
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// stale loads a cache entry regardless of expiry.
func (c *Client) stale(table, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(table, key)
	if err != nil || raw == nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *Client) store(table, key string, data interface{}, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Store(table, key, data, ttl); err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("cache write failed")
	}
}
