// Package kodi is a small JSON-RPC 2.0 client for a Kodi media center.
package kodi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	// RequestsPerSecond caps outgoing calls. Zero or less disables limiting.
	RequestsPerSecond float64
}

// Client talks to Kodi's /jsonrpc endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	username   string
	password   string
	limiter    *rate.Limiter
	nextID     atomic.Uint64
	logger     *slog.Logger
}

// New creates a Kodi client with default HTTP settings.
func New(opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewWithHTTPClient(opts, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient creates a Kodi client with a custom HTTP client (for testing).
func NewWithHTTPClient(opts Options, httpClient *http.Client, logger *slog.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(opts.URL, "/") + "/jsonrpc",
		username:   opts.Username,
		password:   opts.Password,
		limiter:    limiter,
		logger:     logger.With(slog.String("integration", "kodi")),
	}
}

// Execute sends req and returns the raw result member of the response.
// A JSON-RPC error object is returned as *RPCError. A response without a
// result yields a nil message and no error.
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(envelope{
		JSONRPC: "2.0",
		Method:  req.Method,
		Params:  req.Params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", req.Method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("kodi request", slog.String("method", req.Method), slog.String("body", string(body)))

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // endpoint comes from operator config
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", req.Method, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s: unexpected status %d: %s", req.Method, resp.StatusCode, string(b))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", req.Method, err)
	}
	if out.Error != nil {
		return nil, out.Error.toError()
	}
	c.logger.Debug("kodi response", slog.String("method", req.Method), slog.Int("bytes", len(out.Result)))
	return out.Result, nil
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	raw, err := c.Execute(ctx, Request{Method: method, Params: params})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s: response has no result", method)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// Ping verifies that Kodi answers JSON-RPC calls.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.call(ctx, "JSONRPC.Ping", nil, &pong); err != nil {
		return fmt.Errorf("pinging kodi: %w", err)
	}
	if pong != "pong" {
		return fmt.Errorf("pinging kodi: unexpected reply %q", pong)
	}
	return nil
}

// IsPlaying reports whether any player is active.
func (c *Client) IsPlaying(ctx context.Context) (bool, error) {
	var players []struct {
		PlayerID int    `json:"playerid"`
		Type     string `json:"type"`
	}
	if err := c.call(ctx, "Player.GetActivePlayers", nil, &players); err != nil {
		return false, fmt.Errorf("getting active players: %w", err)
	}
	return len(players) > 0, nil
}

// IsScanningVideo reports whether Kodi is currently updating its video library.
func (c *Client) IsScanningVideo(ctx context.Context) (bool, error) {
	const cond = "Library.IsScanningVideo"
	var info map[string]bool
	params := map[string]any{"booleans": []string{cond}}
	if err := c.call(ctx, "XBMC.GetInfoBooleans", params, &info); err != nil {
		return false, fmt.Errorf("checking library scan: %w", err)
	}
	return info[cond], nil
}

// CleanLibrary asks Kodi to drop library entries whose files are gone.
func (c *Client) CleanLibrary(ctx context.Context) error {
	params := map[string]any{"showdialogs": false}
	if err := c.call(ctx, "VideoLibrary.Clean", params, nil); err != nil {
		return fmt.Errorf("cleaning video library: %w", err)
	}
	return nil
}

// Notify shows a notification in the Kodi GUI.
func (c *Client) Notify(ctx context.Context, n Notification) error {
	if err := c.call(ctx, "GUI.ShowNotification", n, nil); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}
