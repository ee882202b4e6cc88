package fallback

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/ghostreader"
)

// Mock is a mock fallback for testing.
//
// Values are keyed by "<locale>.<key>". Unknown keys fail with a
// MissingTranslationError unless Err is set, in which case Err is returned.
type Mock struct {
	Values map[string]any
	Err    error

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock fallback with the given values.
func NewMock(values map[string]any) *Mock {
	if values == nil {
		values = map[string]any{}
	}
	return &Mock{Values: values}
}

// Translate returns the configured value for locale and key.
func (m *Mock) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	key = ghostreader.NormalizeKey(optsScope(opts), key)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, locale+"."+key)

	if v, ok := m.Values[locale+"."+key]; ok {
		return v, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: key}
}

// CallCount returns the number of times Translate was called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the "<locale>.<key>" pairs Translate was called with.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset clears the recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Fallback
var _ Fallback = (*Mock)(nil)
