package ghostreader

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig configures a RateLimitedFallback.
type RateLimitConfig struct {
	RequestsPerMinute int // Default: 60
	BurstSize         int // Default: RequestsPerMinute
}

// RateLimiter is a token bucket shared by every lookup that reaches an
// expensive fallback.
type RateLimiter struct {
	mu       sync.Mutex
	capacity float64
	perSec   float64
	tokens   float64
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = perMinute
	}

	l := &RateLimiter{
		capacity: float64(burst),
		perSec:   float64(perMinute) / 60,
		now:      time.Now,
	}
	l.tokens = l.capacity
	l.last = l.now()
	return l
}

// reserve takes a token when one is available and otherwise returns how long
// until the next one accrues.
func (l *RateLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if elapsed := now.Sub(l.last); elapsed > 0 {
		l.tokens = min(l.capacity, l.tokens+elapsed.Seconds()*l.perSec)
	}
	l.last = now

	if l.tokens >= 1 {
		l.tokens--
		return 0
	}
	return time.Duration((1 - l.tokens) / l.perSec * float64(time.Second))
}

// Wait blocks until a token is taken or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := l.reserve()
		if delay <= 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RateLimitedFallback throttles calls into a Fallback. A lookup whose context
// ends while waiting for a token is reported as missing so a Chain can move on.
type RateLimitedFallback struct {
	fallback Fallback
	limiter  *RateLimiter
}

// NewRateLimitedFallback wraps fallback with a fresh limiter.
func NewRateLimitedFallback(fallback Fallback, cfg RateLimitConfig) *RateLimitedFallback {
	return &RateLimitedFallback{
		fallback: fallback,
		limiter:  NewRateLimiter(cfg),
	}
}

// Translate implements Fallback.
func (f *RateLimitedFallback) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &MissingTranslationError{
			Locale: locale,
			Key:    key,
			Cause:  fmt.Errorf("rate limit wait: %w", err),
		}
	}
	return f.fallback.Translate(ctx, locale, key, opts)
}

// AvailableLocales forwards to the wrapped fallback when it lists locales.
func (f *RateLimitedFallback) AvailableLocales() []string {
	if lister, ok := f.fallback.(LocaleLister); ok {
		return lister.AvailableLocales()
	}
	return nil
}

var _ Fallback = (*RateLimitedFallback)(nil)
