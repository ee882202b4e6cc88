package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ZaguanLabs/ghostreader"
)

func TestHTTPClient_InitialFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/translations" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "ghostreader/") {
			t.Errorf("Unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Write([]byte(`{"en": {"this": {"is": {"a": {"test": "This is a test."}}}}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL + "/api/", APIKey: "secret"})

	resp, err := c.InitialFetch(context.Background())
	if err != nil {
		t.Fatalf("InitialFetch failed: %v", err)
	}

	if !resp.OK() {
		t.Errorf("Expected OK response, got status %d", resp.Status)
	}

	flat := ghostreader.FlattenLocales(resp.Data)
	if flat["en"]["this.is.a.test"] != "This is a test." {
		t.Errorf("Unexpected data: %v", resp.Data)
	}
}

func TestHTTPClient_IncrementalFetchSendsIfModifiedSince(t *testing.T) {
	const lastModified = "Mon, 02 Jan 2006 15:04:05 GMT"

	var mu sync.Mutex
	var seen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("If-Modified-Since"))
		mu.Unlock()

		if r.Header.Get("If-Modified-Since") == lastModified {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", lastModified)
		w.Write([]byte(`{"en": {"a": "1"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	ctx := context.Background()

	if _, err := c.InitialFetch(ctx); err != nil {
		t.Fatalf("InitialFetch failed: %v", err)
	}

	resp, err := c.IncrementalFetch(ctx)
	if err != nil {
		t.Fatalf("IncrementalFetch failed: %v", err)
	}
	if resp.Status != http.StatusNotModified {
		t.Errorf("Expected 304, got %d", resp.Status)
	}
	if resp.OK() {
		t.Error("304 should not be treated as mergeable")
	}

	if len(seen) != 2 || seen[0] != "" || seen[1] != lastModified {
		t.Errorf("Unexpected If-Modified-Since headers: %q", seen)
	}
}

func TestHTTPClient_FetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})

	resp, err := c.IncrementalFetch(context.Background())
	if err != nil {
		t.Fatalf("Bad status should not be a transport error: %v", err)
	}
	if resp.Status != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.Status)
	}
}

func TestHTTPClient_FetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"en": `))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})

	_, err := c.InitialFetch(context.Background())

	var clientErr *ghostreader.ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Expected ClientError, got %v", err)
	}
	if clientErr.Retryable {
		t.Error("Malformed payload should not be retryable")
	}
}

func TestHTTPClient_FetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: url})

	_, err := c.InitialFetch(context.Background())
	if !ghostreader.IsRetryable(err) {
		t.Errorf("Connection failure should be retryable, got %v", err)
	}
}

func TestHTTPClient_Report(t *testing.T) {
	var body map[string]Missings

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translations/missings" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})

	missings := Missings{"this.is.a.test": {"en": {ghostreader.SourceDefault: "This is a test."}}}
	if err := c.Report(context.Background(), missings); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if body["missings"]["this.is.a.test"]["en"]["default"] != "This is a test." {
		t.Errorf("Unexpected report body: %v", body)
	}
}

func TestHTTPClient_ReportRejected(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
		err := c.Report(context.Background(), Missings{})
		srv.Close()

		var clientErr *ghostreader.ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("status %d: expected ClientError, got %v", tt.status, err)
		}
		if clientErr.StatusCode != tt.status {
			t.Errorf("Expected status %d, got %d", tt.status, clientErr.StatusCode)
		}
		if clientErr.Retryable != tt.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, clientErr.Retryable, tt.retryable)
		}
	}
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.Incremental = []*Response{{Status: http.StatusOK, Data: map[string]any{"en": map[string]any{"a": "1"}}}}
	ctx := context.Background()

	resp, err := m.IncrementalFetch(ctx)
	if err != nil || !resp.OK() {
		t.Fatalf("Expected queued response, got %+v, %v", resp, err)
	}

	resp, _ = m.IncrementalFetch(ctx)
	if resp.Status != http.StatusNotModified {
		t.Errorf("Expected 304 once the queue is empty, got %d", resp.Status)
	}

	m.Report(ctx, Missings{"k": {"en": {"default": "v"}}})
	if len(m.Reports()) != 1 {
		t.Errorf("Expected 1 report, got %d", len(m.Reports()))
	}
	if m.Fetches() != 2 {
		t.Errorf("Expected 2 fetches, got %d", m.Fetches())
	}
}
