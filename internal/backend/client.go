// Package backend talks to the rep tracking service over HTTP and websocket.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/reptrack/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20

	pathStart     = "/camera/start"
	pathStop      = "/camera/stop"
	pathReset     = "/reset"
	pathStats     = "/stats"
	pathHealth    = "/"
	pathVideoFeed = "/video_feed"
	pathSocket    = "/ws/stats"

	// SessionHeader carries the per-process session id.
	SessionHeader = "X-Session-ID"
)

// ErrCommandFailed matches every *CommandError.
var ErrCommandFailed = errors.New("backend command failed")

// CommandError describes a failed request.
type CommandError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(e.Endpoint)
	b.WriteString(": ")
	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.StatusCode != 0 && e.Message != "":
		fmt.Fprintf(&b, "status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		fmt.Fprintf(&b, "status %d", e.StatusCode)
	default:
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports ErrCommandFailed as a match.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	SessionID  string
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

// Client issues backend commands and opens live stats streams.
type Client struct {
	base       *url.URL
	sessionID  string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// Health is the response of the root endpoint.
type Health struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type commandResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Stats   json.RawMessage `json:"stats"`
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must use http or https, got %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("backend url %q has no host", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	dialer := cfg.Dialer
	if dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = timeout
		dialer = &d
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Client{
		base:       base,
		sessionID:  sessionID,
		httpClient: httpClient,
		dialer:     dialer,
	}, nil
}

// SessionID returns the id sent with every request.
func (c *Client) SessionID() string {
	return c.sessionID
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// VideoFeedURL returns the URL of the continuously updating camera image.
func (c *Client) VideoFeedURL() string {
	return c.endpoint(pathVideoFeed)
}

// StatsSocketURL returns the websocket URL of the live stats channel.
func (c *Client) StatsSocketURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += pathSocket
	return u.String()
}

// Start asks the backend to start the camera pipeline.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, pathStart)
	return err
}

// Stop asks the backend to stop the camera pipeline.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, pathStop)
	return err
}

// Reset clears the backend counters and returns the replacement snapshot.
func (c *Client) Reset(ctx context.Context) (model.Stats, error) {
	resp, err := c.do(ctx, http.MethodPost, pathReset)
	if err != nil {
		return model.Stats{}, err
	}
	if len(resp.Stats) == 0 || string(resp.Stats) == "null" {
		return model.Stats{}, &CommandError{Endpoint: pathReset, Message: "response has no stats"}
	}
	stats, err := model.ParseStats(resp.Stats)
	if err != nil {
		return model.Stats{}, &CommandError{Endpoint: pathReset, Err: err}
	}
	return stats, nil
}

// Stats returns the backend's current snapshot.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	body, err := c.roundTrip(ctx, http.MethodGet, pathStats)
	if err != nil {
		return model.Stats{}, err
	}
	stats, err := model.ParseStats(body)
	if err != nil {
		return model.Stats{}, &CommandError{Endpoint: pathStats, Err: err}
	}
	return stats, nil
}

// Health returns the backend root status.
func (c *Client) Health(ctx context.Context) (Health, error) {
	body, err := c.roundTrip(ctx, http.MethodGet, pathHealth)
	if err != nil {
		return Health{}, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return Health{}, &CommandError{Endpoint: pathHealth, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return h, nil
}

// do performs a command and rejects responses whose status is "error".
func (c *Client) do(ctx context.Context, method, path string) (commandResponse, error) {
	body, err := c.roundTrip(ctx, method, path)
	if err != nil {
		return commandResponse{}, err
	}
	var resp commandResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return commandResponse{}, &CommandError{Endpoint: path, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	if strings.EqualFold(resp.Status, "error") {
		msg := resp.Message
		if msg == "" {
			msg = "backend reported an error"
		}
		return commandResponse{}, &CommandError{Endpoint: path, Message: msg}
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), nil)
	if err != nil {
		return nil, &CommandError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SessionHeader, c.sessionID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CommandError{Endpoint: path, Err: err}
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &CommandError{Endpoint: path, StatusCode: res.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &CommandError{Endpoint: path, StatusCode: res.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path += path
	return u.String()
}

// errorMessage extracts a readable message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
