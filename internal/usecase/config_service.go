package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roadgrid/cvstore/internal/domain"
)

// ConfigService manages the singleton retention configuration. At most one
// configuration record exists; adds against an existing one are rejected.
type ConfigService struct {
	configs domain.ConfigStore
	logger  *slog.Logger
}

// NewConfigService creates the configuration service.
func NewConfigService(configs domain.ConfigStore, logger *slog.Logger) *ConfigService {
	return &ConfigService{configs: configs, logger: logger}
}

// Get returns the stored configuration, or nil when none exists.
func (s *ConfigService) Get(ctx context.Context) (*domain.RetentionConfig, error) {
	return s.configs.Get(ctx)
}

// Add stores the first retention configuration, assigning it an ID. It
// returns domain.ErrConfigExists when one is already stored.
func (s *ConfigService) Add(ctx context.Context, cfg domain.RetentionConfig) (domain.RetentionConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.RetentionConfig{}, fmt.Errorf("validate retention config: %w", err)
	}
	existing, err := s.configs.Get(ctx)
	if err != nil {
		return domain.RetentionConfig{}, fmt.Errorf("check existing config: %w", err)
	}
	if existing != nil {
		return domain.RetentionConfig{}, domain.ErrConfigExists
	}

	cfg.ID = uuid.New()
	if err := s.configs.Insert(ctx, cfg); err != nil {
		return domain.RetentionConfig{}, fmt.Errorf("insert retention config: %w", err)
	}
	s.logger.Info("retention configuration added", "id", cfg.ID)
	return cfg, nil
}

// Update replaces the stored configuration in full. It returns
// domain.ErrConfigNotFound when no configuration with cfg's ID exists.
func (s *ConfigService) Update(ctx context.Context, cfg domain.RetentionConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate retention config: %w", err)
	}
	if err := s.configs.Update(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("retention configuration updated", "id", cfg.ID)
	return nil
}

// Delete removes the configuration by ID. Purge runs become no-ops until a
// new one is added.
func (s *ConfigService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.configs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete retention config: %w", err)
	}
	s.logger.Info("retention configuration deleted", "id", id)
	return nil
}
