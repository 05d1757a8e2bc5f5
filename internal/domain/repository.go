package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageWriter persists one accepted telemetry record into a tier. The
// write must also increment that day's rollup as a single visible effect.
type MessageWriter interface {
	Insert(ctx context.Context, rec MessageRecord) error
}

// TierStore is the narrow capability surface the retention engine needs.
// Both tiers satisfy it; the purge algorithm is shared across them.
type TierStore interface {
	// Totals sums the tier's daily rollups server-side; O(days).
	Totals(ctx context.Context) (CountAndSize, error)

	// NextOldestDayAfter returns the oldest daily rollup strictly after
	// day, or nil when no further rollups exist.
	NextOldestDayAfter(ctx context.Context, day time.Time) (*DailyRollup, error)

	// DeleteBefore removes every record with timestamp <= cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) error
}

// MessageFinder reads raw records back out of the working tier. The archive
// tier deliberately does not expose record retrieval.
type MessageFinder interface {
	// Find returns working-tier records in [start, end]; end may be nil
	// for an open range.
	Find(ctx context.Context, start time.Time, end *time.Time) ([]MessageRecord, error)

	// FindAfter returns records with timestamp strictly after t. Used by
	// the aggregation engine; each record must be read by exactly one run.
	FindAfter(ctx context.Context, t time.Time) ([]MessageRecord, error)
}

// MinuteCounterStore owns the per-minute materialized view. Only the
// aggregation engine writes it.
type MinuteCounterStore interface {
	// LastModified returns the most recent lastModified across all
	// counters, or nil when none exist.
	LastModified(ctx context.Context) (*time.Time, error)

	// Merge upserts counters by (minute, category): existing buckets gain
	// the incoming count, new buckets are inserted. LastModified is taken
	// from the incoming counters.
	Merge(ctx context.Context, counters []MinuteCounter) error

	// TrimBefore drops counter buckets older than cutoff. The view only
	// ever serves last-hour queries.
	TrimBefore(ctx context.Context, cutoff time.Time) error

	// LastHourTotals sums counters with minute >= since, per category.
	LastHourTotals(ctx context.Context, since time.Time) ([]CategoryCount, error)
}

// StatusReader serves the non-incremental read-side aggregates.
type StatusReader interface {
	TotalsByCategory(ctx context.Context) ([]CategoryCountAndSize, error)
	IntersectionTotals(ctx context.Context) ([]IntersectionTotals, error)
	TotalMessageCount(ctx context.Context) (int64, error)
}

// ConfigStore persists the singleton retention configuration. The
// at-most-one invariant is enforced at the service layer on add.
type ConfigStore interface {
	Get(ctx context.Context) (*RetentionConfig, error)
	Insert(ctx context.Context, cfg RetentionConfig) error
	Update(ctx context.Context, cfg RetentionConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStore is the archive tier's blob medium.
type ObjectStore interface {
	// Put writes the record's payload as a new object and returns the
	// object key. Keys embed the record timestamp so ranges sort
	// lexicographically.
	Put(ctx context.Context, rec MessageRecord) (string, error)

	// Remove deletes one object. Removing a missing object is not an
	// error.
	Remove(ctx context.Context, key string) error

	// SearchRange lists object keys whose embedded timestamp falls in
	// [start, end].
	SearchRange(ctx context.Context, start, end time.Time) ([]string, error)
}

// StatusCache is a best-effort read-side cache; errors are logged by
// callers, never surfaced.
type StatusCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any) error
}
