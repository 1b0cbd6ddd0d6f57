package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const searchEndpoint = "https://query1.finance.yahoo.com/v1/finance/search?q=%s&newsCount=%d&quotesCount=0"

// searchPayload mirrors the finance search response's news section.
type searchPayload struct {
	News []struct {
		Title string `json:"title"`
	} `json:"news"`
}

// Headlines returns recent news titles for a ticker, newest first. An
// empty list is a valid answer (quiet name), distinct from an error.
func (c *Client) Headlines(symbol string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf(searchEndpoint, url.QueryEscape(symbol), limit)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news request for %s returned %d", symbol, resp.StatusCode)
	}

	var payload searchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode news payload for %s: %w", symbol, err)
	}

	headlines := make([]string, 0, len(payload.News))
	for _, item := range payload.News {
		if item.Title != "" {
			headlines = append(headlines, item.Title)
		}
	}
	return headlines, nil
}
