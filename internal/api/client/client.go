// Package client talks to a running breaktime control server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ErrUnavailable reports that no control server answered.
var ErrUnavailable = errors.New("breaktime server unavailable")

// APIError is a non-2xx response from the control server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps rejected configs back to model.ErrInvalidConfig.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusBadRequest {
		return model.ErrInvalidConfig
	}
	return nil
}

var _ session.StatusSource = (*Client)(nil)

// Client is an HTTP client for the control API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server listening on addr (host:port or URL).
func New(addr string) *Client {
	baseURL := addr
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start begins a new session, replacing any running one.
func (c *Client) Start(ctx context.Context, config model.SessionConfig) (*model.SessionRecord, error) {
	var record *model.SessionRecord
	if err := c.do(ctx, http.MethodPost, "/v1/session", config, &record); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return record, nil
}

// Stop cancels the running session.
func (c *Client) Stop(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/v1/session", nil, nil); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	return nil
}

// Status returns the running session, or nil when idle.
func (c *Client) Status(ctx context.Context) (*model.SessionRecord, error) {
	var record *model.SessionRecord
	if err := c.do(ctx, http.MethodGet, "/v1/session", nil, &record); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return record, nil
}

// OverlayConfig returns the overlay parameters of the last expired session, or nil.
func (c *Client) OverlayConfig(ctx context.Context) (*model.OverlayConfig, error) {
	var config *model.OverlayConfig
	if err := c.do(ctx, http.MethodGet, "/v1/session/config", nil, &config); err != nil {
		return nil, fmt.Errorf("get overlay config: %w", err)
	}
	return config, nil
}

// ShowOverlay opens the overlay window on the server host.
func (c *Client) ShowOverlay(ctx context.Context, config model.OverlayConfig) error {
	if err := c.do(ctx, http.MethodPost, "/v1/overlay", config, nil); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	return nil
}

// CloseOverlay closes the overlay window on the server host.
func (c *Client) CloseOverlay(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/v1/overlay", nil, nil); err != nil {
		return fmt.Errorf("close overlay: %w", err)
	}
	return nil
}

// Subscribe streams authority events until ctx is cancelled or the server goes away.
// The first event is always a snapshot of the current state.
func (c *Client) Subscribe(ctx context.Context) (<-chan session.Event, error) {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/events"
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	events := make(chan session.Event)
	go func() {
		defer close(events)
		defer ws.Close(websocket.StatusNormalClosure, "")
		for {
			var event session.Event
			if err := wsjson.Read(ctx, ws, &event); err != nil {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
