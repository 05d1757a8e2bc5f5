package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/roadgrid/cvstore/internal/domain"
)

// ConfigRepository persists the singleton retention configuration row.
type ConfigRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConfigRepository creates the retention configuration store.
func NewConfigRepository(db *sql.DB, logger *slog.Logger) *ConfigRepository {
	return &ConfigRepository{db: db, logger: logger.With("component", "config_repository")}
}

// Get returns the configuration, or nil when none has been created.
func (r *ConfigRepository) Get(ctx context.Context) (*domain.RetentionConfig, error) {
	var cfg domain.RetentionConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT id, online_storage_type, online_days, online_size,
		       archive_storage_type, archived_days, archived_size,
		       start_time, end_time
		FROM cv_config LIMIT 1`,
	).Scan(&cfg.ID, &cfg.OnlineStorageType, &cfg.OnlineDays, &cfg.OnlineSize,
		&cfg.ArchiveStorageType, &cfg.ArchivedDays, &cfg.ArchivedSize,
		&cfg.StartTime, &cfg.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get retention config: %w", err)
	}
	return &cfg, nil
}

// Insert stores a new configuration row.
func (r *ConfigRepository) Insert(ctx context.Context, cfg domain.RetentionConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cv_config (id, online_storage_type, online_days, online_size,
			archive_storage_type, archived_days, archived_size, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		cfg.ID, cfg.OnlineStorageType, cfg.OnlineDays, cfg.OnlineSize,
		cfg.ArchiveStorageType, cfg.ArchivedDays, cfg.ArchivedSize,
		cfg.StartTime, cfg.EndTime)
	if err != nil {
		return fmt.Errorf("insert retention config: %w", err)
	}
	return nil
}

// Update rewrites an existing row; domain.ErrConfigNotFound when the id
// does not exist.
func (r *ConfigRepository) Update(ctx context.Context, cfg domain.RetentionConfig) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cv_config SET
			online_storage_type = $2, online_days = $3, online_size = $4,
			archive_storage_type = $5, archived_days = $6, archived_size = $7,
			start_time = $8, end_time = $9
		WHERE id = $1`,
		cfg.ID, cfg.OnlineStorageType, cfg.OnlineDays, cfg.OnlineSize,
		cfg.ArchiveStorageType, cfg.ArchivedDays, cfg.ArchivedSize,
		cfg.StartTime, cfg.EndTime)
	if err != nil {
		return fmt.Errorf("update retention config: %w", err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

// Delete removes the configuration row by id.
func (r *ConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cv_config WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete retention config: %w", err)
	}
	return nil
}
