package client

import (
	"context"
	"net/http"
	"sync"
)

// Mock is a mock remote service for testing.
//
// Initial is returned by InitialFetch. Incremental responses are returned in
// order; once exhausted, IncrementalFetch answers 304. Reports are recorded.
type Mock struct {
	Initial     *Response
	Incremental []*Response
	FetchErr    error // Returned by both fetches when set
	ReportErr   error // Returned by Report when set

	mu      sync.Mutex
	reports []Missings
	fetches int
}

// NewMock creates a mock with an empty initial snapshot.
func NewMock() *Mock {
	return &Mock{
		Initial: &Response{Status: http.StatusOK, Data: map[string]any{}},
	}
}

// InitialFetch returns the configured snapshot.
func (m *Mock) InitialFetch(ctx context.Context) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Initial, nil
}

// IncrementalFetch returns the next queued response.
func (m *Mock) IncrementalFetch(ctx context.Context) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if len(m.Incremental) == 0 {
		return &Response{Status: http.StatusNotModified}, nil
	}
	resp := m.Incremental[0]
	m.Incremental = m.Incremental[1:]
	return resp, nil
}

// Report records missings.
func (m *Mock) Report(ctx context.Context, missings Missings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, missings)
	return m.ReportErr
}

// Reports returns the recorded reports.
func (m *Mock) Reports() []Missings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Missings(nil), m.reports...)
}

// Fetches returns the number of fetch calls.
func (m *Mock) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// Verify Mock implements Client
var _ Client = (*Mock)(nil)
