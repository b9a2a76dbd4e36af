// Package push is a small client for the real-time push gateway. The
// service treats the gateway as a "notify(channel, event, payload)"
// capability; delivery is best effort and never retried.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config holds settings for the push gateway client.
type Config struct {
	// BaseURL is the HTTP endpoint of the gateway; empty disables delivery
	BaseURL string `yaml:"base_url" json:"base_url"`
	// AppKey authenticates this service against the gateway
	AppKey string `yaml:"app_key" json:"app_key"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Client posts events to the gateway over HTTP.
type Client struct {
	cfg    Config
	client *http.Client
}

type event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewClient creates a gateway client. A nil httpClient gets a default
// one with the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, client: httpClient}, nil
}

// Enabled reports whether a gateway endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.BaseURL != ""
}

// Trigger delivers one event to one channel. Callers treat failures as
// fire-and-forget: log and move on.
func (c *Client) Trigger(ctx context.Context, channel, eventName string, payload any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(event{Channel: channel, Event: eventName, Data: data})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AppKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AppKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
