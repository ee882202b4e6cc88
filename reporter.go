package ghostreader

import (
	"context"
	"log/slog"
	"time"
)

// Reporter periodically pushes the missing registry to the remote service.
type Reporter struct {
	client   Client
	registry *MissingRegistry
	interval time.Duration
	logger   *slog.Logger
}

// NewReporter creates a reporter.
func NewReporter(client Client, registry *MissingRegistry, interval time.Duration, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reporter{
		client:   client,
		registry: registry,
		interval: interval,
		logger:   logger.With("component", "reporter"),
	}
}

// Run blocks until ctx is cancelled. Failed reports are logged and the loop
// continues.
func (r *Reporter) Run(ctx context.Context) error {
	r.logger.Info("starting reporter", "interval", r.interval)

	for {
		if !sleep(ctx, r.interval) {
			r.logger.Info("reporter stopped")
			return nil
		}
		if err := r.Flush(ctx); err != nil {
			r.logger.Error("reporting request failed", "error", err)
		}
	}
}

// Flush reports the registry contents if there are any. On failure the
// drained entries are restored so the next flush reports them again.
func (r *Reporter) Flush(ctx context.Context) error {
	if r.registry.IsEmpty() {
		r.logger.Debug("reporting request omitted, nothing to report")
		return nil
	}

	missings := r.registry.Drain()
	if len(missings) == 0 {
		return nil
	}

	r.logger.Debug("reporting request", "missings", len(missings))
	if err := r.client.Report(ctx, missings); err != nil {
		r.registry.Restore(missings)
		return err
	}
	return nil
}
