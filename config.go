package ghostreader

import (
	"log/slog"
	"time"
)

const (
	// DefaultRetrievalInterval is the pause between incremental fetches.
	DefaultRetrievalInterval = 15 * time.Second
	// DefaultReportInterval is the pause between missing-translation reports.
	DefaultReportInterval = 10 * time.Second
	// DefaultShutdownTimeout bounds the final report performed by Close.
	DefaultShutdownTimeout = 5 * time.Second
	// DefaultLookupConcurrency bounds the parallel lookups of TranslateAll.
	DefaultLookupConcurrency = 8
)

// Config holds the backend configuration. It is not modified after the
// backend is constructed.
type Config struct {
	RetrievalInterval time.Duration // Pause between incremental fetches (default: 15s)
	ReportInterval    time.Duration // Pause between reports (default: 10s)
	ShutdownTimeout   time.Duration // Bound for the final report on Close (default: 5s)
	LookupConcurrency int           // Parallel lookups in TranslateAll (default: 8)
	Fallback          Fallback      // Required
	Client            Client        // Required
	Store             SnapshotStore // Optional persistence of the memoized cache
	Logger            *slog.Logger  // Default: discard
}

// DefaultConfig returns a Config with all defaults set and no collaborators.
func DefaultConfig() Config {
	return Config{
		RetrievalInterval: DefaultRetrievalInterval,
		ReportInterval:    DefaultReportInterval,
		ShutdownTimeout:   DefaultShutdownTimeout,
		LookupConcurrency: DefaultLookupConcurrency,
	}
}

// Validate checks that required collaborators are present and intervals are usable.
func (c Config) Validate() error {
	if c.Fallback == nil {
		return &ConfigurationError{Message: "no fallback given"}
	}
	if c.Client == nil {
		return &ConfigurationError{Message: "no client given"}
	}
	if c.RetrievalInterval < 0 || c.ReportInterval < 0 {
		return &ConfigurationError{Message: "intervals must not be negative"}
	}
	return nil
}

// withDefaults fills zero values with defaults.
func (c Config) withDefaults() Config {
	if c.RetrievalInterval == 0 {
		c.RetrievalInterval = DefaultRetrievalInterval
	}
	if c.ReportInterval == 0 {
		c.ReportInterval = DefaultReportInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.LookupConcurrency <= 0 {
		c.LookupConcurrency = DefaultLookupConcurrency
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Option is a functional option for configuring the Backend.
type Option func(*Config)

// WithRetrievalInterval sets the pause between incremental fetches.
func WithRetrievalInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RetrievalInterval = d
	}
}

// WithReportInterval sets the pause between missing-translation reports.
func WithReportInterval(d time.Duration) Option {
	return func(c *Config) {
		c.ReportInterval = d
	}
}

// WithShutdownTimeout bounds the final report performed by Close.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = d
	}
}

// WithLookupConcurrency bounds the parallel lookups of TranslateAll.
func WithLookupConcurrency(n int) Option {
	return func(c *Config) {
		c.LookupConcurrency = n
	}
}

// WithSnapshotStore persists the memoized cache in store.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
