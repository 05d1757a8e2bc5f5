package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/domain/mocks"
)

func validConfig() domain.RetentionConfig {
	return domain.RetentionConfig{
		OnlineStorageType:  domain.StorageTypeAge,
		OnlineDays:         30,
		ArchiveStorageType: domain.StorageTypeSize,
		ArchivedSize:       1 << 30,
		StartTime:          time.Date(0, 1, 1, 2, 0, 0, 0, time.UTC),
		EndTime:            time.Date(0, 1, 1, 4, 0, 0, 0, time.UTC),
	}
}

func TestConfigService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Add Assigns ID And Stores", func(t *testing.T) {
		store := &mocks.MockConfigStore{}
		svc := NewConfigService(store, logger)

		added, err := svc.Add(context.Background(), validConfig())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if added.ID == uuid.Nil {
			t.Error("expected an assigned ID")
		}
		if store.Stored == nil || store.Stored.ID != added.ID {
			t.Errorf("expected stored config %v, got %+v", added.ID, store.Stored)
		}
	})

	t.Run("Second Add Is Rejected", func(t *testing.T) {
		existing := validConfig()
		existing.ID = uuid.New()
		svc := NewConfigService(&mocks.MockConfigStore{Stored: &existing}, logger)

		_, err := svc.Add(context.Background(), validConfig())
		if !errors.Is(err, domain.ErrConfigExists) {
			t.Errorf("expected ErrConfigExists, got %v", err)
		}
	})

	t.Run("Add Validates Ranges", func(t *testing.T) {
		svc := NewConfigService(&mocks.MockConfigStore{}, logger)
		cfg := validConfig()
		cfg.OnlineDays = 366

		if _, err := svc.Add(context.Background(), cfg); err == nil {
			t.Fatal("expected a validation error, got nil")
		}
	})

	t.Run("Update Missing Config Fails", func(t *testing.T) {
		svc := NewConfigService(&mocks.MockConfigStore{}, logger)
		cfg := validConfig()
		cfg.ID = uuid.New()

		if err := svc.Update(context.Background(), cfg); !errors.Is(err, domain.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("Update Replaces Stored Config", func(t *testing.T) {
		existing := validConfig()
		existing.ID = uuid.New()
		store := &mocks.MockConfigStore{Stored: &existing}
		svc := NewConfigService(store, logger)

		updated := existing
		updated.OnlineDays = 7
		if err := svc.Update(context.Background(), updated); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.Stored.OnlineDays != 7 {
			t.Errorf("expected stored OnlineDays 7, got %d", store.Stored.OnlineDays)
		}
	})

	t.Run("Delete Removes Stored Config", func(t *testing.T) {
		existing := validConfig()
		existing.ID = uuid.New()
		store := &mocks.MockConfigStore{Stored: &existing}
		svc := NewConfigService(store, logger)

		if err := svc.Delete(context.Background(), existing.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.Stored != nil {
			t.Errorf("expected config removed, got %+v", store.Stored)
		}
	})
}
