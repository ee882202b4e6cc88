package ghostreader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ZaguanLabs/ghostreader/cache"
	"golang.org/x/sync/errgroup"
)

// Backend is the translation lookup entry point.
//
// Lookups are served from the memoized cache. Misses are delegated to the
// fallback, and the fallback's answers are memoized and recorded in the
// missing registry for the reporter to push upstream.
type Backend struct {
	config    Config
	cache     *cache.Memoized
	registry  *MissingRegistry
	retriever *Retriever
	reporter  *Reporter
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

// New creates a backend for the given client and fallback.
func New(client Client, fallback Fallback, opts ...Option) (*Backend, error) {
	cfg := DefaultConfig()
	cfg.Client = client
	cfg.Fallback = fallback
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewFromConfig(cfg)
}

// NewFromConfig creates a backend from cfg. Zero-valued settings take their
// defaults; a missing client or fallback is a *ConfigurationError.
func NewFromConfig(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	memo := cache.NewMemoized()
	registry := NewMissingRegistry()

	return &Backend{
		config:    cfg,
		cache:     memo,
		registry:  registry,
		retriever: NewRetriever(cfg.Client, memo, registry, cfg.Store, cfg.RetrievalInterval, cfg.Logger),
		reporter:  NewReporter(cfg.Client, registry, cfg.ReportInterval, cfg.Logger),
		logger:    cfg.Logger,
	}, nil
}

// Start launches the retriever and reporter loops. They run until ctx is
// cancelled or Close is called. Calling Start more than once has no effect.
func (b *Backend) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started || b.closed {
		return
	}
	b.started = true

	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.retriever.Run(gctx) })
	g.Go(func() error { return b.reporter.Run(gctx) })

	go func() {
		defer close(b.done)
		if err := g.Wait(); err != nil {
			b.logger.Error("background loop exited", "error", err)
		}
	}()
}

// Ready is closed once the initial fetch has seeded the cache.
func (b *Backend) Ready() <-chan struct{} {
	return b.retriever.Ready()
}

// WaitReady blocks until the initial fetch completed or ctx is done.
func (b *Backend) WaitReady(ctx context.Context) error {
	select {
	case <-b.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the background loops and reports whatever is still pending.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	ctx, stop := context.WithTimeout(context.Background(), b.config.ShutdownTimeout)
	defer stop()
	if err := b.reporter.Flush(ctx); err != nil {
		return fmt.Errorf("final report: %w", err)
	}
	return nil
}

// Translate returns the translation for key in locale.
//
// A memoized value is returned without consulting the fallback. Otherwise the
// fallback is asked; a scalar answer is memoized (when it does not depend on
// interpolation options), recorded as missing and returned. A value merged
// from the service while the fallback ran is kept and returned instead of the
// fallback answer. Fallback failures
// are returned as *MissingTranslationError and are not recorded.
func (b *Backend) Translate(ctx context.Context, locale, key string, opts *Options) (string, error) {
	flatKey := NormalizeKey(opts.scope(), key)

	if value, ok := b.cache.Lookup(locale, flatKey); ok {
		return value, nil
	}

	if b.config.Fallback == nil {
		return "", &ConfigurationError{Message: "no fallback given"}
	}

	result, err := b.config.Fallback.Translate(ctx, locale, flatKey, opts.withoutScope())
	if err != nil {
		var missing *MissingTranslationError
		if errors.As(err, &missing) {
			return "", err
		}
		return "", &MissingTranslationError{Locale: locale, Key: flatKey, Cause: err}
	}

	value, err := scalarResult(locale, flatKey, result)
	if err != nil {
		return "", err
	}

	if !opts.dependsOnArguments() && !b.cache.Memoize(locale, flatKey, value) {
		// The service delivered the key while the fallback ran.
		if remote, ok := b.cache.Lookup(locale, flatKey); ok {
			return remote, nil
		}
	}
	b.registry.Track(flatKey, locale, SourceDefault, value)

	return value, nil
}

// TranslateAll looks up keys concurrently. It returns the values it could
// resolve and the joined errors of those it could not.
func (b *Backend) TranslateAll(ctx context.Context, locale string, keys []string) (map[string]string, error) {
	var mu sync.Mutex
	values := make(map[string]string, len(keys))
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.LookupConcurrency)

	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		g.Go(func() error {
			value, err := b.Translate(gctx, locale, key, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			values[key] = value
			return nil
		})
	}
	_ = g.Wait()

	return values, errors.Join(errs...)
}

// AvailableLocales returns the cached locales merged with those the fallback
// knows about, sorted.
func (b *Backend) AvailableLocales() []string {
	set := make(map[string]bool)
	for _, locale := range b.cache.Locales() {
		set[locale] = true
	}
	if lister, ok := b.config.Fallback.(LocaleLister); ok {
		for _, locale := range lister.AvailableLocales() {
			set[locale] = true
		}
	}

	locales := make([]string, 0, len(set))
	for locale := range set {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// Cache returns the memoized cache.
func (b *Backend) Cache() *cache.Memoized {
	return b.cache
}

// Registry returns the missing registry.
func (b *Backend) Registry() *MissingRegistry {
	return b.registry
}

// Config returns the effective configuration.
func (b *Backend) Config() Config {
	return b.config
}

// scalarResult converts a fallback answer into a translation string.
func scalarResult(locale, key string, result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case nil:
		return "", &MissingTranslationError{Locale: locale, Key: key}
	case map[string]any, map[string]string, map[any]any, []any, []string:
		return "", &UnsupportedResultError{Locale: locale, Key: key, Type: fmt.Sprintf("%T", result)}
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	}
	return "", &UnsupportedResultError{Locale: locale, Key: key, Type: fmt.Sprintf("%T", result)}
}
