// Package tiger implements the brokerage execution client. Requests are
// HMAC-signed POSTs, serialized through a minimum-interval throttle so a
// reconciliation pass never bursts past the gateway's rate limit.
package tiger

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
)

const (
	defaultBaseURL     = "https://openapi.tigerfintech.com/gateway"
	defaultMinInterval = 250 * time.Millisecond
)

// Client talks to the brokerage gateway. All operations require a prior
// successful Connect; orders are transmitted, never confirmed filled.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	account   string
	http      *http.Client
	log       zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
	connected   bool
}

// NewClient creates a broker client. baseURL may be empty to use the
// production gateway.
func NewClient(baseURL, apiKey, apiSecret, account string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		account:     account,
		http:        &http.Client{Timeout: 30 * time.Second},
		minInterval: defaultMinInterval,
		log:         log.With().Str("client", "tiger").Logger(),
	}
}

// sign computes the hex HMAC-SHA256 of message under the API secret.
func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// gatewayResponse is the standard envelope of every gateway reply.
type gatewayResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

// request serializes, signs and posts one gateway call. Calls are
// throttled to one per minInterval across the whole client.
func (c *Client) request(method string, params interface{}, dest interface{}) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return fmt.Errorf("broker credentials are not configured")
	}

	c.throttle()

	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params for %s: %w", method, err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := sign(c.apiSecret, string(payload)+timestamp)

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tiger-Key", c.apiKey)
	req.Header.Set("X-Tiger-Timestamp", timestamp)
	req.Header.Set("X-Tiger-Sign", signature)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Msg("gateway returned non-200 status")
		return fmt.Errorf("gateway %s returned status %d", method, resp.StatusCode)
	}

	var envelope gatewayResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response for %s: %w", method, err)
	}
	if !envelope.Success {
		msg := "unknown gateway error"
		if envelope.Error != nil {
			msg = *envelope.Error
		}
		return fmt.Errorf("gateway %s failed: %s", method, msg)
	}

	if dest != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("failed to decode data for %s: %w", method, err)
		}
	}
	return nil
}

func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

type accountParams struct {
	Account string `json:"account"`
}

type assetsData struct {
	Equity float64 `json:"equity"`
}

// Connect authenticates against the gateway by fetching account assets.
// This is the only operation whose failure is fatal to a cycle.
func (c *Client) Connect() error {
	var data assetsData
	if err := c.request("account/assets", accountParams{Account: c.account}, &data); err != nil {
		return fmt.Errorf("broker authentication failed: %w", err)
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Info().Str("account", c.account).Msg("broker connected")
	return nil
}

// Connected reports whether Connect has succeeded.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// AccountEquity returns the account's current total equity.
func (c *Client) AccountEquity() (float64, error) {
	var data assetsData
	if err := c.request("account/assets", accountParams{Account: c.account}, &data); err != nil {
		return 0, err
	}
	return data.Equity, nil
}

type positionData struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// Positions returns the account's held quantities. The snapshot is only
// consistent for the phase that fetched it.
func (c *Client) Positions() ([]domain.Position, error) {
	var data []positionData
	if err := c.request("position/list", accountParams{Account: c.account}, &data); err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(data))
	for _, p := range data {
		positions = append(positions, domain.Position{Ticker: p.Symbol, Quantity: p.Quantity})
	}
	return positions, nil
}

type contractParams struct {
	Account string `json:"account"`
	Symbol  string `json:"symbol"`
}

type contractData struct {
	Symbol  string  `json:"symbol"`
	LotSize float64 `json:"lot_size"`
}

// ResolveContract looks up the tradable contract for a ticker.
func (c *Client) ResolveContract(ticker string) (*domain.Contract, error) {
	var data contractData
	if err := c.request("contract/get", contractParams{Account: c.account, Symbol: ticker}, &data); err != nil {
		return nil, err
	}
	return &domain.Contract{Ticker: data.Symbol, LotSize: data.LotSize}, nil
}

type orderParams struct {
	Account     string   `json:"account"`
	Symbol      string   `json:"symbol"`
	Action      string   `json:"action"`
	OrderType   string   `json:"order_type"`
	Quantity    float64  `json:"quantity"`
	LimitPrice  *float64 `json:"limit_price,omitempty"`
	TrailingPct *float64 `json:"trailing_pct,omitempty"`
	ClientRef   string   `json:"client_ref"`
}

type orderData struct {
	OrderID string `json:"order_id"`
}

// PlaceOrder transmits one primary order: a limit order when the intent
// carries a limit price, a market order otherwise.
func (c *Client) PlaceOrder(intent domain.OrderIntent) (*domain.BrokerOrderResult, error) {
	orderType := "MKT"
	if intent.LimitPrice != nil {
		orderType = "LMT"
	}

	var data orderData
	err := c.request("order/place", orderParams{
		Account:    c.account,
		Symbol:     intent.Ticker,
		Action:     string(intent.Action),
		OrderType:  orderType,
		Quantity:   intent.Quantity,
		LimitPrice: intent.LimitPrice,
		ClientRef:  uuid.NewString(),
	}, &data)
	if err != nil {
		return nil, err
	}

	return &domain.BrokerOrderResult{
		OrderID:  data.OrderID,
		Ticker:   intent.Ticker,
		Action:   intent.Action,
		Quantity: intent.Quantity,
	}, nil
}

// PlaceTrailingStop transmits a companion trailing stop sell.
func (c *Client) PlaceTrailingStop(ticker string, quantity, trailingPct float64) (*domain.BrokerOrderResult, error) {
	var data orderData
	err := c.request("order/place", orderParams{
		Account:     c.account,
		Symbol:      ticker,
		Action:      string(domain.ActionSell),
		OrderType:   "TRAIL",
		Quantity:    quantity,
		TrailingPct: &trailingPct,
		ClientRef:   uuid.NewString(),
	}, &data)
	if err != nil {
		return nil, err
	}

	return &domain.BrokerOrderResult{
		OrderID:  data.OrderID,
		Ticker:   ticker,
		Action:   domain.ActionSell,
		Quantity: quantity,
	}, nil
}
