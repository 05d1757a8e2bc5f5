package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics holds the Prometheus metrics shared by the telemetry
// workers. Not every worker touches every metric.
type WorkerMetrics struct {
	MessagesTotal   *prometheus.CounterVec
	BytesTotal      prometheus.Counter
	JobRuns         *prometheus.CounterVec
	OrphanedObjects prometheus.Counter
	PurgedDays      prometheus.Counter
}

// New initializes and registers the metrics on reg. The subsystem names the
// worker (logger, archiver, minutetotals, purgelog, purgearchive).
func New(reg prometheus.Registerer, subsystem string) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cvstore",
			Subsystem: subsystem,
			Name:      "messages_total",
			Help:      "Total messages handled by category and outcome.",
		}, []string{"category", "outcome"}), // outcome: valid, unknown, nonparseable, dropped, error
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cvstore",
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "Total payload bytes persisted.",
		}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cvstore",
			Subsystem: subsystem,
			Name:      "job_runs_total",
			Help:      "Background job executions by result.",
		}, []string{"job", "result"}), // result: ok, error, skipped
		OrphanedObjects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cvstore",
			Subsystem: subsystem,
			Name:      "orphaned_objects_total",
			Help:      "Objects written to the archive store whose tracking record failed to persist.",
		}),
		PurgedDays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cvstore",
			Subsystem: subsystem,
			Name:      "purged_days_total",
			Help:      "Whole calendar days of data removed by the retention engine.",
		}),
	}
}
