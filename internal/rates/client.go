package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	currenciesPath = "/currencies"
	ratesPath      = "/rates"
	dateLayout     = "2006-01-02"
)

// Options parameterise the reference-rate client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Currency is the metadata the API reports per currency code.
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RateTable is one day's conversion rates relative to a base currency.
type RateTable struct {
	Base  string
	Date  string
	Rates map[string]decimal.Decimal
}

// Client fetches currency metadata and conversion rates from a
// vatcomply-style HTTP API.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a reference-rate client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.vatcomply.com"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "rates_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchCurrencies retrieves the code-to-metadata mapping.
func (c *Client) FetchCurrencies(ctx context.Context) (map[string]Currency, error) {
	payload, err := c.get(ctx, c.baseURL+currenciesPath)
	if err != nil {
		return nil, err
	}

	var currencies map[string]Currency
	if err := json.Unmarshal(payload, &currencies); err != nil {
		return nil, fmt.Errorf("decode currencies: %w", err)
	}
	return currencies, nil
}

// FetchRates retrieves conversion rates for the base currency on the given
// date. A nil date means today (UTC).
func (c *Client) FetchRates(ctx context.Context, base string, date *time.Time) (*RateTable, error) {
	day := time.Now().UTC()
	if date != nil {
		day = date.UTC()
	}

	query := url.Values{}
	query.Set("base", base)
	query.Set("date", day.Format(dateLayout))

	payload, err := c.get(ctx, c.baseURL+ratesPath+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var body struct {
		Base  string                     `json:"base"`
		Date  string                     `json:"date"`
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates response for base %s contained no rates", base)
	}

	return &RateTable{Base: body.Base, Date: body.Date, Rates: body.Rates}, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(payload))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("rates api returned status %d: %s", resp.StatusCode, snippet)
	}

	return payload, nil
}
