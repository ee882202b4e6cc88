package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ZaguanLabs/ghostreader"
)

// HTTPClient talks to the translation service over HTTP.
//
// The initial fetch is a plain GET of the translations resource. Incremental
// fetches send If-Modified-Since with the Last-Modified value of the previous
// successful fetch, so an unchanged service answers 304.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu           sync.Mutex
	lastModified string
}

// HTTPConfig holds configuration for the HTTP client.
type HTTPConfig struct {
	BaseURL    string        // Service base URL (e.g., "https://translations.example.com/api")
	APIKey     string        // Sent as a bearer token (optional)
	Timeout    time.Duration // Per-request timeout (default: 10s)
	HTTPClient *http.Client  // Custom client (optional, Timeout is ignored)
}

const (
	translationsPath = "/translations"
	missingsPath     = "/translations/missings"
	maxErrorBody     = 512
)

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// InitialFetch retrieves the full translation set.
func (c *HTTPClient) InitialFetch(ctx context.Context) (*Response, error) {
	return c.fetch(ctx, false)
}

// IncrementalFetch retrieves translations changed since the last fetch.
func (c *HTTPClient) IncrementalFetch(ctx context.Context) (*Response, error) {
	return c.fetch(ctx, true)
}

func (c *HTTPClient) fetch(ctx context.Context, incremental bool) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, translationsPath, nil)
	if err != nil {
		return nil, err
	}

	if incremental {
		c.mu.Lock()
		if c.lastModified != "" {
			req.Header.Set("If-Modified-Since", c.lastModified)
		}
		c.mu.Unlock()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ghostreader.ClientError{
			Message:   "fetch failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	result := &Response{Status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		// Non-success statuses are handed to the caller to decide on.
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(&result.Data); err != nil {
		return nil, &ghostreader.ClientError{
			Message:    "decoding translations",
			Cause:      err,
			StatusCode: resp.StatusCode,
		}
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		c.mu.Lock()
		c.lastModified = lm
		c.mu.Unlock()
	}

	return result, nil
}

// Report posts missing translations as JSON.
func (c *HTTPClient) Report(ctx context.Context, missings Missings) error {
	body, err := json.Marshal(map[string]Missings{"missings": missings})
	if err != nil {
		return fmt.Errorf("encoding missings: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, missingsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ghostreader.ClientError{
			Message:   "report failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ghostreader.ClientError{
			Message:    "report rejected: " + strings.TrimSpace(string(msg)),
			StatusCode: resp.StatusCode,
			Retryable:  isRetryableStatus(resp.StatusCode),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", ghostreader.UserAgent())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Verify HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
