package ghostreader

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if error is retryable
		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Check for ClientError with Retryable flag
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Retryable
	}

	return false
}

// RetryableClient wraps a Client with retry logic.
//
// Retries happen inside a single fetch or report; the retriever and reporter
// still poll at their fixed intervals. Transport failures, retryable
// ClientErrors and fetch responses with status 429 or 5xx are retried. When
// every fetch attempt answers with such a status, the last response is
// returned without an error so the caller applies its own status handling.
type RetryableClient struct {
	client Client
	config RetryConfig
}

// NewRetryableClient creates a new client with retry logic.
func NewRetryableClient(client Client, cfg RetryConfig) *RetryableClient {
	return &RetryableClient{
		client: client,
		config: cfg,
	}
}

// InitialFetch implements Client with retry logic.
func (c *RetryableClient) InitialFetch(ctx context.Context) (*Response, error) {
	return c.fetch(ctx, c.client.InitialFetch)
}

// IncrementalFetch implements Client with retry logic.
func (c *RetryableClient) IncrementalFetch(ctx context.Context) (*Response, error) {
	return c.fetch(ctx, c.client.IncrementalFetch)
}

func (c *RetryableClient) fetch(ctx context.Context, fn func(context.Context) (*Response, error)) (*Response, error) {
	var unavailable *Response
	resp, err := WithRetry(ctx, c.config, func() (*Response, error) {
		resp, err := fn(ctx)
		if err == nil && resp != nil && retryableStatus(resp.Status) {
			unavailable = resp
			return nil, &ClientError{Message: "fetch answered", StatusCode: resp.Status, Retryable: true}
		}
		unavailable = nil
		return resp, err
	})

	var clientErr *ClientError
	if unavailable != nil && errors.As(err, &clientErr) && clientErr.StatusCode == unavailable.Status {
		return unavailable, nil
	}
	return resp, err
}

func retryableStatus(status int) bool {
	return status == 429 || status >= 500
}

// Report implements Client with retry logic.
func (c *RetryableClient) Report(ctx context.Context, missings Missings) error {
	_, err := WithRetry(ctx, c.config, func() (struct{}, error) {
		return struct{}{}, c.client.Report(ctx, missings)
	})
	return err
}

// Verify RetryableClient implements Client
var _ Client = (*RetryableClient)(nil)
