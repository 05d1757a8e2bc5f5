package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/domain/mocks"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func openWindowConfig(strategy domain.StorageType, days int, size int64) *domain.RetentionConfig {
	return &domain.RetentionConfig{
		OnlineStorageType:  strategy,
		OnlineDays:         days,
		OnlineSize:         size,
		ArchiveStorageType: strategy,
		ArchivedDays:       days,
		ArchivedSize:       size,
		StartTime:          time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:            time.Date(0, 1, 1, 23, 59, 0, 0, time.UTC),
	}
}

func TestRetentionService_Purge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixedNow := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	newService := func(cfg *domain.RetentionConfig, tier *mocks.MockTierStore) *RetentionService {
		svc := NewRetentionService(&mocks.MockConfigStore{Stored: cfg}, tier, domain.TierWorking, nil, logger)
		svc.now = func() time.Time { return fixedNow }
		return svc
	}

	t.Run("No Configuration Is A NoOp", func(t *testing.T) {
		tier := &mocks.MockTierStore{}
		svc := newService(nil, tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tier.DeletedBefore) != 0 {
			t.Errorf("expected no deletes, got %d", len(tier.DeletedBefore))
		}
	})

	t.Run("Outside Maintenance Window Skips", func(t *testing.T) {
		cfg := openWindowConfig(domain.StorageTypeAge, 30, 0)
		cfg.StartTime = time.Date(0, 1, 1, 2, 0, 0, 0, time.UTC)
		cfg.EndTime = time.Date(0, 1, 1, 4, 0, 0, 0, time.UTC)
		tier := &mocks.MockTierStore{}
		svc := newService(cfg, tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tier.DeletedBefore) != 0 {
			t.Errorf("expected no deletes outside window, got %d", len(tier.DeletedBefore))
		}
	})

	t.Run("Age Purge Uses End Of Cutoff Day", func(t *testing.T) {
		tier := &mocks.MockTierStore{}
		svc := newService(openWindowConfig(domain.StorageTypeAge, 30, 0), tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := time.Date(2024, 2, 4, 23, 59, 59, 0, time.UTC)
		if len(tier.DeletedBefore) != 1 || !tier.DeletedBefore[0].Equal(want) {
			t.Errorf("expected delete cutoff %v, got %v", want, tier.DeletedBefore)
		}
	})

	t.Run("Size Purge Removes Oldest Days Until Excess Covered", func(t *testing.T) {
		// 1200 bytes stored against a 1000 byte cap: the oldest day's 400
		// bytes cover the 200 byte excess on its own.
		tier := &mocks.MockTierStore{
			TotalsResult: domain.CountAndSize{MessageCount: 30, ByteSize: 1200},
			Rollups: []domain.DailyRollup{
				{Day: day(2024, 3, 1), MessageCount: 10, ByteSize: 400},
				{Day: day(2024, 3, 2), MessageCount: 10, ByteSize: 400},
				{Day: day(2024, 3, 3), MessageCount: 10, ByteSize: 400},
			},
		}
		svc := newService(openWindowConfig(domain.StorageTypeSize, 0, 1000), tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
		if len(tier.DeletedBefore) != 1 || !tier.DeletedBefore[0].Equal(want) {
			t.Errorf("expected single delete at %v, got %v", want, tier.DeletedBefore)
		}
	})

	t.Run("Size Purge Spans Multiple Days", func(t *testing.T) {
		tier := &mocks.MockTierStore{
			TotalsResult: domain.CountAndSize{ByteSize: 1200},
			Rollups: []domain.DailyRollup{
				{Day: day(2024, 3, 1), ByteSize: 100},
				{Day: day(2024, 3, 2), ByteSize: 100},
				{Day: day(2024, 3, 3), ByteSize: 1000},
			},
		}
		svc := newService(openWindowConfig(domain.StorageTypeSize, 0, 900), tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// Excess is 300; days one and two give 200, day three tips it over.
		want := time.Date(2024, 3, 3, 23, 59, 59, 0, time.UTC)
		if len(tier.DeletedBefore) != 1 || !tier.DeletedBefore[0].Equal(want) {
			t.Errorf("expected delete cutoff %v, got %v", want, tier.DeletedBefore)
		}
	})

	t.Run("Size Purge Under Cap Is A NoOp", func(t *testing.T) {
		tier := &mocks.MockTierStore{
			TotalsResult: domain.CountAndSize{ByteSize: 500},
			Rollups:      []domain.DailyRollup{{Day: day(2024, 3, 1), ByteSize: 500}},
		}
		svc := newService(openWindowConfig(domain.StorageTypeSize, 0, 1000), tier)

		if err := svc.Purge(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tier.DeletedBefore) != 0 {
			t.Errorf("expected no deletes under cap, got %d", len(tier.DeletedBefore))
		}
	})

	t.Run("Config Load Failure Surfaces", func(t *testing.T) {
		configs := &mocks.MockConfigStore{GetErr: errors.New("db down")}
		svc := NewRetentionService(configs, &mocks.MockTierStore{}, domain.TierWorking, nil, logger)
		svc.now = func() time.Time { return fixedNow }

		if err := svc.Purge(context.Background()); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})

	t.Run("Delete Failure Surfaces", func(t *testing.T) {
		tier := &mocks.MockTierStore{DeleteErr: errors.New("delete failed")}
		svc := newService(openWindowConfig(domain.StorageTypeAge, 7, 0), tier)

		if err := svc.Purge(context.Background()); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}

func TestBytesToPurge(t *testing.T) {
	cases := []struct {
		name       string
		total, max int64
		want       int64
	}{
		{"Over Cap", 1200, 1000, 200},
		{"At Cap", 1000, 1000, 0},
		{"Under Cap", 800, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bytesToPurge(tc.total, tc.max); got != tc.want {
				t.Errorf("bytesToPurge(%d, %d) = %d, want %d", tc.total, tc.max, got, tc.want)
			}
		})
	}
}

func TestInMaintenanceWindow(t *testing.T) {
	start := time.Date(0, 1, 1, 2, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, 4, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"Before Start", time.Date(2024, 3, 5, 1, 59, 59, 0, time.UTC), false},
		{"At Start", time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), true},
		{"Inside", time.Date(2024, 3, 5, 3, 15, 0, 0, time.UTC), true},
		{"End Minute Second 59", time.Date(2024, 3, 5, 4, 30, 59, 0, time.UTC), true},
		{"After End", time.Date(2024, 3, 5, 4, 31, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := inMaintenanceWindow(tc.now, start, end); got != tc.want {
				t.Errorf("inMaintenanceWindow(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}
