package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/adapter/metrics"
	"github.com/roadgrid/cvstore/internal/domain"
)

// ArchiveRepository is the archive-tier store: payloads live in the object
// store, while a lightweight tracking mirror and the daily rollups live
// here so size queries never touch the (costly, rate-limited) object store.
type ArchiveRepository struct {
	db      *sql.DB
	objects domain.ObjectStore
	logger  *slog.Logger
	metrics *metrics.WorkerMetrics
	track   func(ctx context.Context, key string, rec domain.MessageRecord) error
}

// NewArchiveRepository creates an archive-tier repository over the given
// object store.
func NewArchiveRepository(db *sql.DB, objects domain.ObjectStore, logger *slog.Logger, m *metrics.WorkerMetrics) *ArchiveRepository {
	r := &ArchiveRepository{
		db:      db,
		objects: objects,
		logger:  logger.With("component", "archive_repository"),
		metrics: m,
	}
	r.track = r.insertTracking
	return r
}

// Insert writes the object first; only on success does it record the
// tracking mirror entry and rollup increment. A failed object write leaves
// no visible trace. A failed tracking write after a successful object write
// leaves an orphaned object: logged and counted, not healed.
func (r *ArchiveRepository) Insert(ctx context.Context, rec domain.MessageRecord) error {
	key, err := r.objects.Put(ctx, rec)
	if err != nil {
		return fmt.Errorf("put archive object: %w", err)
	}

	if err := r.track(ctx, key, rec); err != nil {
		r.logger.Error("archive object written but tracking record failed, accounting will drift",
			"object_key", key, "error", err)
		if r.metrics != nil {
			r.metrics.OrphanedObjects.Inc()
		}
	}
	return nil
}

func (r *ArchiveRepository) insertTracking(ctx context.Context, key string, rec domain.MessageRecord) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	_, err = txn.ExecContext(ctx,
		`INSERT INTO cv_archive_tracking (object_key, ts, byte_size) VALUES ($1, $2, $3)`,
		key, rec.TimeStamp, rec.ByteSize)
	if err != nil {
		return fmt.Errorf("insert tracking record: %w", err)
	}

	day := rec.TimeStamp.UTC().Truncate(24 * time.Hour)
	_, err = txn.ExecContext(ctx, `
		INSERT INTO cv_archive_daily_totals (day, message_count, byte_size)
		VALUES ($1, 1, $2)
		ON CONFLICT (day) DO UPDATE SET
			message_count = cv_archive_daily_totals.message_count + 1,
			byte_size = cv_archive_daily_totals.byte_size + EXCLUDED.byte_size`,
		day, rec.ByteSize)
	if err != nil {
		return fmt.Errorf("increment archive rollup: %w", err)
	}

	return txn.Commit()
}

// Totals sums the archive daily rollups.
func (r *ArchiveRepository) Totals(ctx context.Context) (domain.CountAndSize, error) {
	var totals domain.CountAndSize
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(message_count), 0), COALESCE(SUM(byte_size), 0) FROM cv_archive_daily_totals`,
	).Scan(&totals.MessageCount, &totals.ByteSize)
	if err != nil {
		return domain.CountAndSize{}, fmt.Errorf("sum archive rollups: %w", err)
	}
	return totals, nil
}

// NextOldestDayAfter returns the oldest archive rollup strictly after day.
func (r *ArchiveRepository) NextOldestDayAfter(ctx context.Context, day time.Time) (*domain.DailyRollup, error) {
	var rollup domain.DailyRollup
	err := r.db.QueryRowContext(ctx,
		`SELECT day, message_count, byte_size FROM cv_archive_daily_totals WHERE day > $1 ORDER BY day ASC LIMIT 1`,
		day,
	).Scan(&rollup.Day, &rollup.MessageCount, &rollup.ByteSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next oldest archive day: %w", err)
	}
	return &rollup, nil
}

// DeleteBefore resolves tracked objects with timestamp <= cutoff, deletes
// each object, then removes the tracking records and rollups. Object delete
// failures are logged and skipped, never retried inline; their tracking
// rows are still removed, so a later manual sweep works from the object
// store alone.
func (r *ArchiveRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	keys, err := r.trackedKeysBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	r.logger.Debug("deleting archive objects", "count", len(keys), "cutoff", cutoff)

	for _, key := range keys {
		if err := r.objects.Remove(ctx, key); err != nil {
			r.logger.Error("failed to delete archive object", "object_key", key, "error", err)
		}
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	res, err := txn.ExecContext(ctx, `DELETE FROM cv_archive_tracking WHERE ts <= $1`, cutoff)
	if err != nil {
		return fmt.Errorf("delete tracking records: %w", err)
	}
	if _, err := txn.ExecContext(ctx, `DELETE FROM cv_archive_daily_totals WHERE day <= $1`, cutoff); err != nil {
		return fmt.Errorf("delete archive rollups: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	if count, err := res.RowsAffected(); err == nil {
		r.logger.Debug("deleted tracking records", "count", count, "cutoff", cutoff)
	}
	return nil
}

func (r *ArchiveRepository) trackedKeysBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT object_key FROM cv_archive_tracking WHERE ts <= $1 ORDER BY ts ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query tracked objects: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
