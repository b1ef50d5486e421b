package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com/v1"
	DefaultTimeout = 120 * time.Second

	// DefaultRequestsPerMinute paces API calls below Cohere's trial-key
	// limit so parallel embedding batches do not trip 429s.
	DefaultRequestsPerMinute = 90
)

// Config holds configuration shared by all Cohere services.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.com/v1).
	BaseURL string

	// Timeout is the request timeout (default: 120s). Streaming
	// responses are exempt; they run until the stream ends or the
	// context is cancelled.
	Timeout time.Duration

	// RequestsPerMinute caps the request rate. Zero uses the default,
	// a negative value disables pacing.
	RequestsPerMinute int
}

// Client is the shared HTTP transport for the Cohere services.
type Client struct {
	http      *http.Client
	streaming *http.Client
	baseURL   string
	apiKey    string
	limiter   *rate.Limiter
}

// NewClient creates a Cohere API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute/10+1)
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		streaming: &http.Client{},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		limiter:   limiter,
	}, nil
}

// apiError is the Cohere error response format.
type apiError struct {
	Message string `json:"message"`
}

// postJSON sends a request and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, reqBody, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postStream sends a request and hands the raw response body to the
// caller, who owns closing it. Streaming requests use the client
// without a timeout.
func (c *Client) postStream(ctx context.Context, path string, reqBody any) (io.ReadCloser, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.streaming.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("cohere error (status %d): %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// Ping validates the API key by listing models.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("cohere: failed to create ping request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cohere: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cohere: ping failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
