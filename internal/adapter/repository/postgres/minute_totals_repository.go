package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

// MinuteTotalsRepository owns the per-minute materialized view. Ingestion
// never writes here; only the aggregation engine does.
type MinuteTotalsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMinuteTotalsRepository creates the minute-counter store.
func NewMinuteTotalsRepository(db *sql.DB, logger *slog.Logger) *MinuteTotalsRepository {
	return &MinuteTotalsRepository{db: db, logger: logger.With("component", "minute_totals_repository")}
}

// LastModified returns the newest lastModified across all counters, which
// is the aggregation engine's watermark. Nil when no counters exist.
func (r *MinuteTotalsRepository) LastModified(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(last_modified) FROM cv_minute_totals`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("max last modified: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time
	return &t, nil
}

// Merge upserts counters by (minute, category): an existing bucket gains
// the incoming count, a new bucket is inserted as-is. Either way the
// bucket's lastModified becomes the incoming run time. All buckets of one
// run commit together so a failed run never advances the watermark.
func (r *MinuteTotalsRepository) Merge(ctx context.Context, counters []domain.MinuteCounter) error {
	if len(counters) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, c := range counters {
		_, err := txn.ExecContext(ctx, `
			INSERT INTO cv_minute_totals (minute, category, message_count, last_modified)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (minute, category) DO UPDATE SET
				message_count = cv_minute_totals.message_count + EXCLUDED.message_count,
				last_modified = EXCLUDED.last_modified`,
			c.Minute, c.Category, c.MessageCount, c.LastModified)
		if err != nil {
			return fmt.Errorf("merge minute counter %s/%s: %w", c.Minute.Format(time.RFC3339), c.Category, err)
		}
	}

	return txn.Commit()
}

// TrimBefore drops counter buckets older than cutoff. The view serves only
// last-hour queries; earlier deployments relied on a store-side TTL index
// for the same effect.
func (r *MinuteTotalsRepository) TrimBefore(ctx context.Context, cutoff time.Time) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cv_minute_totals WHERE minute < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("trim minute counters: %w", err)
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		r.logger.Debug("trimmed expired minute counters", "count", count)
	}
	return nil
}

// LastHourTotals sums counters with minute >= since, per category.
func (r *MinuteTotalsRepository) LastHourTotals(ctx context.Context, since time.Time) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(message_count), 0)
		FROM cv_minute_totals WHERE minute >= $1
		GROUP BY category ORDER BY category`, since)
	if err != nil {
		return nil, fmt.Errorf("last hour totals: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryCount
	for rows.Next() {
		var t domain.CategoryCount
		if err := rows.Scan(&t.Category, &t.MessageCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
