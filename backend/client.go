// Copyright (c) 2025 BVK Chaitanya

// Package backend implements a client for the account and watchlist service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"time"
)

type Options struct {
	// Address holds the base URL of the backend service, for example,
	// "http://127.0.0.1:5000".
	Address string

	// Timeout to use for the HTTP requests.
	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.Address == "" {
		v.Address = "http://127.0.0.1:5000"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
}

func (v *Options) Check() error {
	u, err := url.Parse(v.Address)
	if err != nil {
		return fmt.Errorf("could not parse the backend address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend address must be a http or https url")
	}
	return nil
}

type Client struct {
	opts Options

	base *url.URL

	client *http.Client
}

// New creates a client for the backend service.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	base, err := url.Parse(opts.Address)
	if err != nil {
		return nil, fmt.Errorf("could not parse the backend address: %w", err)
	}

	jar, err := cookiejar.New(nil /* options */)
	if err != nil {
		slog.Error("could not create cookiejar", "err", err)
		return nil, fmt.Errorf("could not create cookiejar: %w", err)
	}

	c := &Client{
		opts: *opts,
		base: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: opts.HttpClientTimeout,
		},
	}
	return c, nil
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, subpath, token string, request, resultPtr any) error {
	var body io.Reader
	if request != nil {
		payload, err := json.Marshal(request)
		if err != nil {
			slog.Error("could not marshal request body to json", "err", err)
			return err
		}
		body = bytes.NewReader(payload)
	}

	u := *c.base
	u.Path = path.Join(u.Path, subpath)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		slog.Error("could not create http request with context", "url", &u, "err", err)
		return err
	}
	if request != nil {
		req.Header.Set("content-type", "application/json")
	}
	if len(token) != 0 {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not do http client request", "url", &u, "err", err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &Error{StatusCode: resp.StatusCode}
		if data, err := io.ReadAll(resp.Body); err == nil {
			_ = json.Unmarshal(data, herr)
		}
		slog.Error("backend request is unsuccessful", "method", method, "url", u.String(), "status", resp.StatusCode)
		return herr
	}
	if resultPtr == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(resultPtr); err != nil {
		slog.Error("could not decode response to json", "err", err)
		return fmt.Errorf("could not decode response to json: %w", err)
	}
	return nil
}

// ValidateToken checks a saved session token with the backend service and
// returns the user it belongs to.
func (c *Client) ValidateToken(ctx context.Context, token string) (*User, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("token cannot be empty")
	}
	resp := new(ValidateTokenResponse)
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/validateToken", token, nil, resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("validate token response has no user")
	}
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := &LoginRequest{Email: email, Password: password}
	resp := new(LoginResponse)
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, resp); err != nil {
		return nil, err
	}
	if len(resp.Token) == 0 || resp.User == nil {
		return nil, fmt.Errorf("login response has no token or user")
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	req := &RegisterRequest{Name: name, Email: email, Password: password}
	resp := new(RegisterResponse)
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout invalidates the session token on the backend service. Failures are
// not fatal because the local session is dropped anyway.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// WatchlistCoinIDs returns all watched coin ids for the user.
func (c *Client) WatchlistCoinIDs(ctx context.Context, token, userID string) ([]string, error) {
	resp := new(WatchlistCoinsResponse)
	subpath := path.Join("/watchlist/user", userID, "coins")
	if err := c.doJSON(ctx, http.MethodGet, subpath, token, nil, resp); err != nil {
		return nil, err
	}
	return resp.CoinIDs, nil
}

// WatchlistToggle flips the watched state for a coin and reports whether the
// coin is watched after the flip.
func (c *Client) WatchlistToggle(ctx context.Context, token, userID, coinID string) (bool, error) {
	req := &WatchlistToggleRequest{UserID: userID, CoinID: coinID}
	resp := new(WatchlistToggleResponse)
	if err := c.doJSON(ctx, http.MethodPost, "/watchlist/toggle", token, req, resp); err != nil {
		return false, err
	}
	return resp.Added, nil
}

func (c *Client) WatchlistAdd(ctx context.Context, token, userID, coinID string) error {
	req := &WatchlistAddRequest{UserID: userID, CoinID: coinID}
	return c.doJSON(ctx, http.MethodPost, "/watchlist/add", token, req, nil)
}

func (c *Client) WatchlistRemove(ctx context.Context, token, userID, coinID string) error {
	subpath := path.Join("/watchlist/remove", userID, coinID)
	return c.doJSON(ctx, http.MethodDelete, subpath, token, nil, nil)
}

func (c *Client) WatchlistBulkAdd(ctx context.Context, token, userID string, coinIDs []string) (int, error) {
	req := &WatchlistBulkAddRequest{UserID: userID, CoinIDs: coinIDs}
	resp := new(WatchlistBulkAddResponse)
	if err := c.doJSON(ctx, http.MethodPost, "/watchlist/bulk-add", token, req, resp); err != nil {
		return 0, err
	}
	return resp.Added, nil
}

func (c *Client) WatchlistClear(ctx context.Context, token, userID string) error {
	subpath := path.Join("/watchlist/user", userID, "clear")
	return c.doJSON(ctx, http.MethodDelete, subpath, token, nil, nil)
}

func (c *Client) WatchlistCheck(ctx context.Context, token, userID, coinID string) (bool, error) {
	resp := new(WatchlistCheckResponse)
	subpath := path.Join("/watchlist/check", userID, coinID)
	if err := c.doJSON(ctx, http.MethodGet, subpath, token, nil, resp); err != nil {
		return false, err
	}
	return resp.InWatchlist, nil
}

func (c *Client) WatchlistStats(ctx context.Context, token, userID string) (*WatchlistStatsResponse, error) {
	resp := new(WatchlistStatsResponse)
	subpath := path.Join("/watchlist/user", userID, "stats")
	if err := c.doJSON(ctx, http.MethodGet, subpath, token, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
