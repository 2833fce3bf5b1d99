// Package client is a small synchronous wrapper around the remote inference API
// (GET /health, GET /model, GET /fortune, POST /generate).
//
// A Client owns one http.Client and transport so keep-alive connections are reused
// across calls. Calls block until the response body is read or the transport fails.
// Callers are expected to serialize calls on one Client; use separate clients for
// parallel work.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"llmchat/pkg/types"
)

// Client talks to one inference service.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero (the default) waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. The caller's client is
// never modified; a WithTimeout bound applies to a copy of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger installs a logger for per-call debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for baseURL with all trailing slashes removed.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// HealthCheck calls GET /health. The HTTP status is not checked.
func (c *Client) HealthCheck(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	err := c.getJSON(ctx, "/health", &out)
	return out, err
}

// GetModelName calls GET /model. A missing model_name is not an error; use NameOr.
func (c *Client) GetModelName(ctx context.Context) (types.ModelNameResponse, error) {
	var out types.ModelNameResponse
	err := c.getJSON(ctx, "/model", &out)
	return out, err
}

// GetFortune calls GET /fortune. A missing fortune is not an error; use TextOr.
func (c *Client) GetFortune(ctx context.Context) (types.FortuneResponse, error) {
	var out types.FortuneResponse
	err := c.getJSON(ctx, "/fortune", &out)
	return out, err
}

// getJSON issues a GET and decodes whatever body comes back.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("client get")
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	// drain so the connection goes back to the pool
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
