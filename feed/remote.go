package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/rustyeddy/replay/market"
)

// Client fetches historical bars from a remote market-data provider. Requests
// are throttled with a token-bucket limiter so bulk downloads stay inside the
// provider's rate limits.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the provider at baseURL. requestsPerSecond
// bounds the request rate; values <= 0 default to 2 req/s.
func NewClient(baseURL, token string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

type candleJSON struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

type candlesResponse struct {
	Instrument string       `json:"instrument"`
	Candles    []candleJSON `json:"candles"`
}

// FetchBars downloads bars for one instrument in [from, to). The returned
// bars are sorted and validated.
func (c *Client) FetchBars(ctx context.Context, instrument string, from, to time.Time) ([]market.Bar, error) {
	if instrument == "" {
		return nil, fmt.Errorf("feed: instrument required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("instrument", instrument)
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/candles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: fetch %s: unexpected status %s", instrument, resp.Status)
	}

	var body candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("feed: decode candles for %s: %w", instrument, err)
	}

	bars := make([]market.Bar, 0, len(body.Candles))
	for _, cd := range body.Candles {
		bars = append(bars, market.Bar{
			Instrument: instrument,
			Time:       cd.Time,
			Open:       cd.Open,
			High:       cd.High,
			Low:        cd.Low,
			Close:      cd.Close,
			Volume:     cd.Volume,
		})
	}

	market.SortBars(bars)
	if err := market.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("feed: provider data for %s: %w", instrument, err)
	}
	return bars, nil
}
