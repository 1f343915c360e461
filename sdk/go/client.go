package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration for the mailrelay client.
type Config struct {
	// BaseURL is the root URL of the mailrelay server.
	// Example: "http://localhost:8080"
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 30s timeout is used.
	HTTPClient *http.Client

	// RequestIDFunc, when set, supplies an X-Request-ID for every call.
	RequestIDFunc func(ctx context.Context) string
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Client calls the mailrelay HTTP API.
type Client struct {
	cfg Config
}

// NewClient creates a new mailrelay client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SendEmail asks the server to submit one templated email.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/email/send", req)
	if err != nil {
		return nil, err
	}

	var resp SendEmailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mailrelay: failed to parse send response: %w", err)
	}
	return &resp, nil
}

// Health fetches the server health report. A degraded server returns the
// report together with an *APIError carrying status 503.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)

	var resp HealthResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("mailrelay: failed to parse health response: %w", jsonErr)
	}
	return &resp, err
}

// do sends a request to the mailrelay API. On a status >= 400 it returns the
// body together with the parsed *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mailrelay: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("mailrelay: failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.RequestIDFunc != nil {
		if id := c.cfg.RequestIDFunc(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mailrelay: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mailrelay: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return body, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}
