package ghostreader

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestWithRetry_Success(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	callCount := 0
	result, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_RetryableError(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	callCount := 0
	result, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", &ClientError{Message: "rate limited", StatusCode: 429, Retryable: true}
		}
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	callCount := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", &ClientError{Message: "invalid API key", StatusCode: 401, Retryable: false}
	})

	if err == nil {
		t.Fatal("Expected error for non-retryable error")
	}

	// Should not retry non-retryable errors
	if callCount != 1 {
		t.Errorf("Expected 1 call for non-retryable error, got %d", callCount)
	}
}

func TestWithRetry_MaxRetriesExceeded(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	callCount := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", &ClientError{Message: "rate limited", StatusCode: 429, Retryable: true}
	})

	if err == nil {
		t.Fatal("Expected error after max retries")
	}

	// Initial attempt + 2 retries = 3 calls
	if callCount != 3 {
		t.Errorf("Expected 3 calls (1 + 2 retries), got %d", callCount)
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second, // Long delay
		MaxDelay:   10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, cfg, func() (string, error) {
		callCount++
		return "", &ClientError{Message: "rate limited", StatusCode: 429, Retryable: true}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable client error", &ClientError{Retryable: true}, true},
		{"non-retryable client error", &ClientError{Retryable: false}, false},
		{"wrapped retryable error", fmt.Errorf("fetch: %w", &ClientError{Retryable: true}), true},
		{"generic error", errors.New("some error"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryable(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries 3, got %d", cfg.MaxRetries)
	}

	if cfg.BaseDelay != 1*time.Second {
		t.Errorf("Expected BaseDelay 1s, got %v", cfg.BaseDelay)
	}

	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("Expected MaxDelay 30s, got %v", cfg.MaxDelay)
	}
}

func TestRetryableClient(t *testing.T) {
	inner := &flakyClient{failCount: 2}
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	c := NewRetryableClient(inner, cfg)

	resp, err := c.IncrementalFetch(context.Background())
	if err != nil {
		t.Fatalf("Expected success after retries, got: %v", err)
	}

	if !resp.OK() {
		t.Errorf("Unexpected response: %+v", resp)
	}

	if inner.callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.callCount)
	}
}

func TestRetryableClient_Report(t *testing.T) {
	inner := &flakyClient{failCount: 1}
	cfg := RetryConfig{
		MaxRetries: 1,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}

	c := NewRetryableClient(inner, cfg)

	err := c.Report(context.Background(), Missings{"k": {"en": {SourceDefault: "v"}}})
	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}
	if inner.callCount != 2 {
		t.Errorf("Expected 2 calls, got %d", inner.callCount)
	}
}

func TestRetryableClient_RetriesServerErrorStatus(t *testing.T) {
	inner := &statusClient{statuses: []int{503, 429, 200}}
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	resp, err := NewRetryableClient(inner, cfg).InitialFetch(context.Background())
	if err != nil {
		t.Fatalf("Expected success after retries, got: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("Expected status 200, got %d", resp.Status)
	}
	if inner.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryableClient_ReturnsLastStatusWhenExhausted(t *testing.T) {
	inner := &statusClient{statuses: []int{500, 502}}
	cfg := RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	resp, err := NewRetryableClient(inner, cfg).IncrementalFetch(context.Background())
	if err != nil {
		t.Fatalf("Expected status response, got error: %v", err)
	}
	if resp.Status != 502 {
		t.Errorf("Expected status 502, got %d", resp.Status)
	}
	if inner.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", inner.calls)
	}
}

func TestRetryableClient_DoesNotRetryClientStatus(t *testing.T) {
	for _, status := range []int{304, 404} {
		inner := &statusClient{statuses: []int{status, 200}}
		cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

		resp, err := NewRetryableClient(inner, cfg).IncrementalFetch(context.Background())
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if resp.Status != status || inner.calls != 1 {
			t.Errorf("status %d: got status %d after %d calls", status, resp.Status, inner.calls)
		}
	}
}

// statusClient answers fetches with the given statuses in order, repeating
// the last one.
type statusClient struct {
	statuses []int
	calls    int
}

func (c *statusClient) InitialFetch(ctx context.Context) (*Response, error) {
	status := c.statuses[min(c.calls, len(c.statuses)-1)]
	c.calls++
	return &Response{Status: status, Data: map[string]any{}}, nil
}

func (c *statusClient) IncrementalFetch(ctx context.Context) (*Response, error) {
	return c.InitialFetch(ctx)
}

func (c *statusClient) Report(ctx context.Context, missings Missings) error {
	return nil
}

// flakyClient fails with a retryable error the first failCount calls.
type flakyClient struct {
	failCount int
	callCount int
}

func (c *flakyClient) attempt() error {
	c.callCount++
	if c.callCount <= c.failCount {
		return &ClientError{Message: "temporary failure", StatusCode: 503, Retryable: true}
	}
	return nil
}

func (c *flakyClient) InitialFetch(ctx context.Context) (*Response, error) {
	if err := c.attempt(); err != nil {
		return nil, err
	}
	return &Response{Status: 200, Data: map[string]any{}}, nil
}

func (c *flakyClient) IncrementalFetch(ctx context.Context) (*Response, error) {
	return c.InitialFetch(ctx)
}

func (c *flakyClient) Report(ctx context.Context, missings Missings) error {
	return c.attempt()
}
