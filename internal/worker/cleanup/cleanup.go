// Package cleanup prunes ledger rows whose tokens expired long enough ago
// that they can no longer be presented.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/catalog/internal/metrics"
)

type Pruner interface {
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

type Worker struct {
	pruner    Pruner
	metrics   metrics.Recorder
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time
}

func New(p Pruner, m metrics.Recorder, logger *slog.Logger, retention time.Duration) *Worker {
	if m == nil {
		m = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		pruner:    p,
		metrics:   m,
		logger:    logger.With("worker", "token_cleanup"),
		retention: retention,
		now:       time.Now,
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled.
func (w *Worker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("cleanup_started", "interval", interval, "retention", w.retention)
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup_stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Error("cleanup_failed", "error", err)
	}
}

// RunOnce deletes rows that expired before now minus the retention window.
func (w *Worker) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)
	n, err := w.pruner.DeleteExpiredTokens(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	w.metrics.TokensPruned(n)
	if n > 0 {
		w.logger.Info("cleanup_pruned", "rows", n, "cutoff", cutoff)
	}
	return n, nil
}
