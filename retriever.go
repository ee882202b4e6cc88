package ghostreader

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ZaguanLabs/ghostreader/cache"
)

// Retriever keeps the memoized cache in sync with the remote service.
//
// Run performs one initial fetch that seeds the cache and initializes the
// missing registry, then polls for incremental updates every interval. The
// interval is measured from the end of the previous poll.
type Retriever struct {
	client   Client
	cache    *cache.Memoized
	registry *MissingRegistry
	store    SnapshotStore
	interval time.Duration
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// NewRetriever creates a retriever. store may be nil.
func NewRetriever(client Client, c *cache.Memoized, registry *MissingRegistry, store SnapshotStore, interval time.Duration, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retriever{
		client:   client,
		cache:    c,
		registry: registry,
		store:    store,
		interval: interval,
		logger:   logger.With("component", "retriever"),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the initial fetch succeeded.
func (r *Retriever) Ready() <-chan struct{} {
	return r.ready
}

// Run blocks until ctx is cancelled.
func (r *Retriever) Run(ctx context.Context) error {
	r.logger.Info("starting retriever", "interval", r.interval)

	warmed := false
	for {
		err := r.Initialize(ctx)
		if err == nil {
			break
		}
		r.logger.Warn("initial fetch failed, will retry at next interval", "error", err)

		if !warmed {
			warmed = true
			r.warmFromStore(ctx)
		}

		if !sleep(ctx, r.interval) {
			return nil
		}
	}

	for {
		if !sleep(ctx, r.interval) {
			r.logger.Info("retriever stopped")
			return nil
		}
		if err := r.Poll(ctx); err != nil {
			r.logger.Warn("incremental fetch failed, will retry at next interval", "error", err)
		}
	}
}

// Initialize performs the initial fetch, seeds the cache and initializes the
// missing registry.
func (r *Retriever) Initialize(ctx context.Context) error {
	resp, err := r.client.InitialFetch(ctx)
	if err != nil {
		return err
	}
	if resp == nil {
		return &ClientError{Message: "initial fetch returned no response"}
	}
	if resp.Status != 0 && !resp.OK() {
		return &ClientError{Message: "initial fetch rejected", StatusCode: resp.Status}
	}

	seed := FlattenLocales(resp.Data)
	r.cache.Seed(seed)
	r.registry.Initialize()
	r.readyOnce.Do(func() { close(r.ready) })

	r.logger.Info("initial fetch complete", "locales", len(seed), "keys", r.cache.Len())
	r.persist(ctx, seed)
	return nil
}

// Poll performs one incremental fetch and merges a successful response into
// the cache. Non-success statuses are logged and skipped.
func (r *Retriever) Poll(ctx context.Context) error {
	r.logger.Debug("incremental request")

	resp, err := r.client.IncrementalFetch(ctx)
	if err != nil {
		return err
	}
	if resp == nil {
		return &ClientError{Message: "incremental fetch returned no response"}
	}

	if !resp.OK() {
		if resp.Status == http.StatusNotModified {
			r.logger.Debug("no updates")
		} else {
			r.logger.Warn("incremental fetch skipped", "status", resp.Status)
		}
		return nil
	}

	result := r.cache.MergeAll(FlattenLocales(resp.Data))
	r.logger.Debug("incremental update merged",
		"added", result.Added,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
	)
	if result.HasChanges() {
		r.persist(ctx, result.Changed)
	}
	return nil
}

func (r *Retriever) persist(ctx context.Context, translations Translations) {
	if r.store == nil || len(translations) == 0 {
		return
	}
	if err := r.store.Save(ctx, translations); err != nil {
		r.logger.Warn("persisting snapshot failed", "error", &CacheError{Message: "save", Cause: err})
	}
}

// warmFromStore fills the cache from the snapshot store while the remote
// service is unreachable.
func (r *Retriever) warmFromStore(ctx context.Context) {
	if r.store == nil {
		return
	}
	snapshot, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("loading snapshot failed", "error", &CacheError{Message: "load", Cause: err})
		return
	}
	result := r.cache.MergeAll(snapshot)
	r.logger.Info("cache warmed from snapshot", "keys", result.Added+result.Updated+result.Unchanged)
}

// sleep waits for d or until ctx is done. Returns false if ctx is done.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
