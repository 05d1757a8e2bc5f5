package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

// LogRepository is the working-tier store: raw message records plus the
// daily rollups that make purge decisions O(days).
type LogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLogRepository creates a working-tier repository.
func NewLogRepository(db *sql.DB, logger *slog.Logger) *LogRepository {
	return &LogRepository{db: db, logger: logger.With("component", "log_repository")}
}

// Insert persists the record and increments that day's rollup in a single
// transaction, so the rollup never undercounts a visible record.
func (r *LogRepository) Insert(ctx context.Context, rec domain.MessageRecord) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // no-op after Commit

	_, err = txn.ExecContext(ctx,
		`INSERT INTO cv_messages (ts, category, byte_size, payload) VALUES ($1, $2, $3, $4)`,
		rec.TimeStamp, rec.Category, rec.ByteSize, []byte(rec.Payload))
	if err != nil {
		return fmt.Errorf("insert message record: %w", err)
	}

	day := rec.TimeStamp.UTC().Truncate(24 * time.Hour)
	_, err = txn.ExecContext(ctx, `
		INSERT INTO cv_log_daily_totals (day, message_count, byte_size)
		VALUES ($1, 1, $2)
		ON CONFLICT (day) DO UPDATE SET
			message_count = cv_log_daily_totals.message_count + 1,
			byte_size = cv_log_daily_totals.byte_size + EXCLUDED.byte_size`,
		day, rec.ByteSize)
	if err != nil {
		return fmt.Errorf("increment daily rollup: %w", err)
	}

	return txn.Commit()
}

// Totals sums the daily rollups. The numbers slightly undercount real
// storage because index overhead is not included.
func (r *LogRepository) Totals(ctx context.Context) (domain.CountAndSize, error) {
	var totals domain.CountAndSize
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(message_count), 0), COALESCE(SUM(byte_size), 0) FROM cv_log_daily_totals`,
	).Scan(&totals.MessageCount, &totals.ByteSize)
	if err != nil {
		return domain.CountAndSize{}, fmt.Errorf("sum daily rollups: %w", err)
	}
	return totals, nil
}

// NextOldestDayAfter returns the oldest rollup strictly after day, or nil
// when the tier has no further days of data.
func (r *LogRepository) NextOldestDayAfter(ctx context.Context, day time.Time) (*domain.DailyRollup, error) {
	var rollup domain.DailyRollup
	err := r.db.QueryRowContext(ctx,
		`SELECT day, message_count, byte_size FROM cv_log_daily_totals WHERE day > $1 ORDER BY day ASC LIMIT 1`,
		day,
	).Scan(&rollup.Day, &rollup.MessageCount, &rollup.ByteSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next oldest day: %w", err)
	}
	return &rollup, nil
}

// DeleteBefore removes every record with timestamp <= cutoff along with the
// rollup buckets those records fully cover. Cutoffs always land on an
// end-of-day boundary, so a rollup day is either kept whole or dropped
// whole.
func (r *LogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	res, err := txn.ExecContext(ctx, `DELETE FROM cv_messages WHERE ts <= $1`, cutoff)
	if err != nil {
		return fmt.Errorf("delete message records: %w", err)
	}
	if _, err := txn.ExecContext(ctx, `DELETE FROM cv_log_daily_totals WHERE day <= $1`, cutoff); err != nil {
		return fmt.Errorf("delete daily rollups: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return err
	}

	if count, err := res.RowsAffected(); err == nil {
		r.logger.Debug("deleted records from working tier", "count", count, "cutoff", cutoff)
	}
	return nil
}

// Find returns records in [start, end]; a nil end leaves the range open.
func (r *LogRepository) Find(ctx context.Context, start time.Time, end *time.Time) ([]domain.MessageRecord, error) {
	query := `SELECT ts, category, byte_size, payload FROM cv_messages WHERE ts >= $1`
	args := []any{start}
	if end != nil {
		query += ` AND ts <= $2`
		args = append(args, *end)
	}
	query += ` ORDER BY ts ASC`

	return r.queryRecords(ctx, query, args...)
}

// FindAfter returns records with timestamp strictly after t, in timestamp
// order. The aggregation engine relies on the strict inequality to read
// each record exactly once across runs.
func (r *LogRepository) FindAfter(ctx context.Context, t time.Time) ([]domain.MessageRecord, error) {
	return r.queryRecords(ctx,
		`SELECT ts, category, byte_size, payload FROM cv_messages WHERE ts > $1 ORDER BY ts ASC`, t)
}

// TotalsByCategory aggregates lifetime counts and sizes over the records
// currently held in the working tier.
func (r *LogRepository) TotalsByCategory(ctx context.Context) ([]domain.CategoryCountAndSize, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(byte_size), 0)
		FROM cv_messages GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryCountAndSize
	for rows.Next() {
		var t domain.CategoryCountAndSize
		if err := rows.Scan(&t.Category, &t.MessageCount, &t.ByteSize); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// IntersectionTotals reads the read-mostly per-intersection aggregates,
// sorted by intersection id.
func (r *LogRepository) IntersectionTotals(ctx context.Context) ([]domain.IntersectionTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT intersection_id, intersection_region, intersection_name, category, message_count, byte_size
		FROM cv_intersection_totals ORDER BY intersection_id`)
	if err != nil {
		return nil, fmt.Errorf("intersection totals: %w", err)
	}
	defer rows.Close()

	var totals []domain.IntersectionTotals
	for rows.Next() {
		var t domain.IntersectionTotals
		if err := rows.Scan(&t.IntersectionID, &t.IntersectionRegion, &t.IntersectionName,
			&t.Category, &t.MessageCount, &t.ByteSize); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// TotalMessageCount counts the records currently in the working tier.
func (r *LogRepository) TotalMessageCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cv_messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("total message count: %w", err)
	}
	return count, nil
}

func (r *LogRepository) queryRecords(ctx context.Context, query string, args ...any) ([]domain.MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query message records: %w", err)
	}
	defer rows.Close()

	var records []domain.MessageRecord
	for rows.Next() {
		var rec domain.MessageRecord
		var payload []byte
		if err := rows.Scan(&rec.TimeStamp, &rec.Category, &rec.ByteSize, &payload); err != nil {
			return nil, err
		}
		rec.Payload = payload
		records = append(records, rec)
	}
	return records, rows.Err()
}
