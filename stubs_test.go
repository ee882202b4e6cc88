package ghostreader

import (
	"context"
	"sync"
)

// stubClient is a scriptable Client for in-package tests.
type stubClient struct {
	mu          sync.Mutex
	initial     *Response
	initialErr  error
	incremental []*Response // consumed in order, the last one repeats
	incErr      error
	reportErr   error

	initialCalls     int
	incrementalCalls int
	reports          []Missings
}

func (c *stubClient) InitialFetch(ctx context.Context) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialCalls++
	if c.initialErr != nil {
		return nil, c.initialErr
	}
	if c.initial == nil {
		return &Response{Status: 200, Data: map[string]any{}}, nil
	}
	return c.initial, nil
}

func (c *stubClient) IncrementalFetch(ctx context.Context) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incrementalCalls++
	if c.incErr != nil {
		return nil, c.incErr
	}
	if len(c.incremental) == 0 {
		return &Response{Status: 304}, nil
	}
	resp := c.incremental[0]
	if len(c.incremental) > 1 {
		c.incremental = c.incremental[1:]
	}
	return resp, nil
}

func (c *stubClient) Report(ctx context.Context, missings Missings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, missings)
	return c.reportErr
}

func (c *stubClient) reportCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reports)
}

func (c *stubClient) incrementalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.incrementalCalls
}

// stubFallback returns a fixed result and counts calls.
type stubFallback struct {
	mu     sync.Mutex
	result any
	err    error
	calls  int
}

func (f *stubFallback) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *stubFallback) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fallbackFunc adapts a function to the Fallback interface.
type fallbackFunc func(ctx context.Context, locale, key string, opts *Options) (any, error)

func (f fallbackFunc) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	return f(ctx, locale, key, opts)
}

// memStore is an in-memory SnapshotStore.
type memStore struct {
	mu      sync.Mutex
	data    Translations
	saves   int
	loadErr error
}

func (s *memStore) Save(ctx context.Context, translations Translations) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.data == nil {
		s.data = make(Translations)
	}
	for locale, entries := range translations {
		if s.data[locale] == nil {
			s.data[locale] = make(map[string]string)
		}
		for k, v := range entries {
			s.data[locale][k] = v
		}
	}
	return nil
}

func (s *memStore) Load(ctx context.Context) (Translations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(Translations, len(s.data))
	for locale, entries := range s.data {
		out[locale] = make(map[string]string, len(entries))
		for k, v := range entries {
			out[locale][k] = v
		}
	}
	return out, nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (c *stubClient) setInitialErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialErr = err
}

// nested builds {locale: {"this": {"is": {"a": {"test": value}}}}}.
func nested(locale, value string) map[string]any {
	return map[string]any{
		locale: map[string]any{
			"this": map[string]any{
				"is": map[string]any{
					"a": map[string]any{"test": value},
				},
			},
		},
	}
}
