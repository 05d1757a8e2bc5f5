package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roadgrid/cvstore/internal/adapter/metrics"
)

// JobGuard ensures at most one execution of a job kind runs at a time.
// Overlapping triggers are skipped, never queued: a tick that arrives while
// the previous run is still going is logged and dropped.
type JobGuard struct {
	name    string
	mu      sync.Mutex
	logger  *slog.Logger
	metrics *metrics.WorkerMetrics
}

// NewJobGuard creates a guard for the named job kind.
func NewJobGuard(name string, m *metrics.WorkerMetrics, logger *slog.Logger) *JobGuard {
	return &JobGuard{name: name, logger: logger, metrics: m}
}

// TryRun executes fn unless a previous run is still active, in which case
// it skips without blocking. It reports whether fn ran.
func (g *JobGuard) TryRun(ctx context.Context, fn func(context.Context) error) bool {
	if !g.mu.TryLock() {
		g.logger.Warn("previous run still active, skipping tick", "job", g.name)
		g.count("skipped")
		return false
	}
	defer g.mu.Unlock()

	if err := fn(ctx); err != nil {
		g.logger.Error("job failed", "job", g.name, "error", err)
		g.count("error")
	} else {
		g.count("ok")
	}
	return true
}

// RunAsync dispatches fn through TryRun on its own goroutine. Callers
// driven by a sequential message loop use it so the trigger is acknowledged
// immediately: a tick that lands while the previous run is still going gets
// skipped instead of queueing behind it in the loop.
func (g *JobGuard) RunAsync(ctx context.Context, fn func(context.Context) error) {
	go g.TryRun(ctx, fn)
}

func (g *JobGuard) count(result string) {
	if g.metrics != nil {
		g.metrics.JobRuns.WithLabelValues(g.name, result).Inc()
	}
}
