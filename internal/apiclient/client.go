// Package apiclient wraps the single-endpoint transport data API: a plain
// request/retry client with no crawl semantics.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the API connection settings.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryAttempts int
}

// Record is one article-shaped row returned by the records endpoint.
type Record struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// Client issues bearer-authenticated JSON requests with bounded retry.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Get fetches endpoint and decodes the JSON response into out. Failed
// requests are retried with 2^attempt second backoff up to the ceiling.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.buildURL(endpoint)
	if params != nil {
		target += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.doJSON(ctx, http.MethodGet, target, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warn("api request failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return fmt.Errorf("all %d attempts failed for %s: %w", c.cfg.RetryAttempts, endpoint, lastErr)
}

// Post sends payload to endpoint as JSON. No retry: posts are not assumed
// idempotent.
func (c *Client) Post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, c.buildURL(endpoint), body, out)
}

// FetchRecords pulls the article records from endpoint.
func (c *Client) FetchRecords(ctx context.Context, endpoint string) ([]Record, error) {
	var records []Record
	if err := c.Get(ctx, endpoint, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) doJSON(ctx context.Context, method, target string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, target, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(endpoint string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}
