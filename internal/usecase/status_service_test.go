package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/domain/mocks"
)

func TestStatusService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Totals By Tier Covers Both Tiers", func(t *testing.T) {
		working := &mocks.MockTierStore{TotalsResult: domain.CountAndSize{MessageCount: 10, ByteSize: 100}}
		archive := &mocks.MockTierStore{TotalsResult: domain.CountAndSize{MessageCount: 4, ByteSize: 40}}
		svc := NewStatusService(&mocks.MockMessageFinder{}, &mocks.MockStatusReader{}, working, archive, &mocks.MockMinuteCounterStore{}, nil, logger)

		totals, err := svc.TotalsByTier(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("expected 2 tiers, got %d", len(totals))
		}
		if totals[0].Tier != domain.TierWorking || totals[0].MessageCount != 10 {
			t.Errorf("unexpected working totals %+v", totals[0])
		}
		if totals[1].Tier != domain.TierArchive || totals[1].ByteSize != 40 {
			t.Errorf("unexpected archive totals %+v", totals[1])
		}
	})

	t.Run("Category Totals Hit The Cache On Second Read", func(t *testing.T) {
		reader := &mocks.MockStatusReader{CategoryTotals: []domain.CategoryCountAndSize{
			{Category: domain.CategorySPAT, MessageCount: 5, ByteSize: 50},
		}}
		cache := &mocks.MockStatusCache{}
		svc := NewStatusService(&mocks.MockMessageFinder{}, reader, &mocks.MockTierStore{}, &mocks.MockTierStore{}, &mocks.MockMinuteCounterStore{}, cache, logger)

		for i := 0; i < 2; i++ {
			totals, err := svc.TotalsByCategory(context.Background())
			if err != nil {
				t.Fatalf("read %d: expected no error, got %v", i, err)
			}
			if len(totals) != 1 || totals[0].MessageCount != 5 {
				t.Fatalf("read %d: unexpected totals %+v", i, totals)
			}
		}
		if reader.CategoryTotalCalls != 1 {
			t.Errorf("expected 1 store read, got %d", reader.CategoryTotalCalls)
		}
	})

	t.Run("Cache Failure Falls Through To The Store", func(t *testing.T) {
		reader := &mocks.MockStatusReader{CategoryTotals: []domain.CategoryCountAndSize{
			{Category: domain.CategoryBSM, MessageCount: 1},
		}}
		cache := &mocks.MockStatusCache{GetErr: errors.New("redis down"), SetErr: errors.New("redis down")}
		svc := NewStatusService(&mocks.MockMessageFinder{}, reader, &mocks.MockTierStore{}, &mocks.MockTierStore{}, &mocks.MockMinuteCounterStore{}, cache, logger)

		totals, err := svc.TotalsByCategory(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(totals) != 1 {
			t.Errorf("expected totals despite cache failure, got %+v", totals)
		}
	})

	t.Run("Tier Totals Failure Surfaces", func(t *testing.T) {
		working := &mocks.MockTierStore{TotalsErr: errors.New("db down")}
		svc := NewStatusService(&mocks.MockMessageFinder{}, &mocks.MockStatusReader{}, working, &mocks.MockTierStore{}, &mocks.MockMinuteCounterStore{}, nil, logger)

		if _, err := svc.TotalsByTier(context.Background()); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}
