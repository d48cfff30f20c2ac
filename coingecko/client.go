// Copyright (c) 2025 BVK Chaitanya

package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// Credentials holds the optional api key for the coingecko service. The free
// endpoints work without a key, but with stricter rate limits.
type Credentials struct {
	Key string `json:"key"`
}

func (v *Credentials) Check() error {
	if len(v.Key) == 0 {
		return fmt.Errorf("api key cannot be empty")
	}
	return nil
}

type Client struct {
	opts Options

	key string

	client *http.Client

	limiter *rate.Limiter
}

// New creates a client for the coingecko api. Credentials may be nil.
func New(creds *Credentials, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	jar, err := cookiejar.New(nil /* options */)
	if err != nil {
		slog.Error("could not create cookiejar", "err", err)
		return nil, fmt.Errorf("could not create cookiejar: %w", err)
	}

	c := &Client{
		opts: *opts,
		client: &http.Client{
			Jar:     jar,
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(opts.RateLimit, 1),
	}
	if creds != nil {
		c.key = creds.Key
	}
	return c, nil
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) getJSON(ctx context.Context, url *url.URL, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		slog.Error("could not create http get request with context", "url", url, "err", err)
		return err
	}
	req.Header.Set("accept", "application/json")
	if len(c.key) != 0 {
		req.Header.Set("x-cg-demo-api-key", c.key)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not do http client request", "url", url, "err", err)
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		slog.Error("http GET is unsuccessful", "status", resp.StatusCode, "url", url.String())
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		slog.Error("could not decode response to json", "err", err)
		return fmt.Errorf("could not decode response to json: %w", err)
	}
	return nil
}

// ListMarkets fetches one page of the market listing ordered by descending
// market cap, with 24h and 7d price change percentages included.
func (c *Client) ListMarkets(ctx context.Context, currency string, page, perPage int) ([]*Market, error) {
	if currency == "" {
		currency = c.opts.DefaultCurrency
	}
	values := make(url.Values)
	values.Set("vs_currency", currency)
	values.Set("order", "market_cap_desc")
	values.Set("per_page", strconv.Itoa(perPage))
	values.Set("page", strconv.Itoa(page))
	values.Set("sparkline", "false")
	values.Set("price_change_percentage", "24h,7d")
	url := &url.URL{
		Scheme:   "https",
		Host:     c.opts.RestHostname,
		Path:     "/api/v3/coins/markets",
		RawQuery: values.Encode(),
	}

	var markets []*Market
	if err := c.getJSON(ctx, url, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetCoin fetches the detail view for a single coin id.
func (c *Client) GetCoin(ctx context.Context, id string) (*Coin, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("coin id cannot be empty")
	}
	values := make(url.Values)
	values.Set("localization", "false")
	values.Set("tickers", "false")
	values.Set("community_data", "false")
	values.Set("developer_data", "false")
	values.Set("sparkline", "false")
	url := &url.URL{
		Scheme:   "https",
		Host:     c.opts.RestHostname,
		Path:     "/api/v3/coins/" + id,
		RawQuery: values.Encode(),
	}

	coin := new(Coin)
	if err := c.getJSON(ctx, url, coin); err != nil {
		return nil, err
	}
	return coin, nil
}

// GetMarketChart fetches daily historical price, market cap and volume series
// for the last ndays.
func (c *Client) GetMarketChart(ctx context.Context, id, currency string, ndays int) (*MarketChart, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("coin id cannot be empty")
	}
	if currency == "" {
		currency = c.opts.DefaultCurrency
	}
	values := make(url.Values)
	values.Set("vs_currency", currency)
	values.Set("days", strconv.Itoa(ndays))
	values.Set("interval", "daily")
	url := &url.URL{
		Scheme:   "https",
		Host:     c.opts.RestHostname,
		Path:     "/api/v3/coins/" + id + "/market_chart",
		RawQuery: values.Encode(),
	}

	chart := new(MarketChart)
	if err := c.getJSON(ctx, url, chart); err != nil {
		return nil, err
	}
	return chart, nil
}
