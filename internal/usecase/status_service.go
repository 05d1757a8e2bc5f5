package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

// StatusService serves the read-side aggregates over both tiers. Results of
// the heavier queries go through a best-effort cache; every cache failure is
// treated as a miss and logged at debug.
type StatusService struct {
	finder   domain.MessageFinder
	reader   domain.StatusReader
	working  domain.TierStore
	archive  domain.TierStore
	counters domain.MinuteCounterStore
	cache    domain.StatusCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatusService creates the status read service. cache may be nil.
func NewStatusService(finder domain.MessageFinder, reader domain.StatusReader, working, archive domain.TierStore, counters domain.MinuteCounterStore, cache domain.StatusCache, logger *slog.Logger) *StatusService {
	return &StatusService{
		finder:   finder,
		reader:   reader,
		working:  working,
		archive:  archive,
		counters: counters,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Find returns working-tier records in [start, end]; a nil end leaves the
// range open.
func (s *StatusService) Find(ctx context.Context, start time.Time, end *time.Time) ([]domain.MessageRecord, error) {
	return s.finder.Find(ctx, start, end)
}

// TotalsByCategory returns lifetime per-category totals over the working
// tier.
func (s *StatusService) TotalsByCategory(ctx context.Context) ([]domain.CategoryCountAndSize, error) {
	var totals []domain.CategoryCountAndSize
	if s.cacheGet(ctx, "totals_by_category", &totals) {
		return totals, nil
	}
	totals, err := s.reader.TotalsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	s.cacheSet(ctx, "totals_by_category", totals)
	return totals, nil
}

// TotalsByTier returns per-tier totals, summed from each tier's daily
// rollups.
func (s *StatusService) TotalsByTier(ctx context.Context) ([]domain.TierCountAndSize, error) {
	var totals []domain.TierCountAndSize
	if s.cacheGet(ctx, "totals_by_tier", &totals) {
		return totals, nil
	}

	tiers := []struct {
		kind  domain.TierKind
		store domain.TierStore
	}{
		{domain.TierWorking, s.working},
		{domain.TierArchive, s.archive},
	}
	for _, tier := range tiers {
		if tier.store == nil {
			continue
		}
		sum, err := tier.store.Totals(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s tier totals: %w", tier.kind, err)
		}
		totals = append(totals, domain.TierCountAndSize{
			Tier:         tier.kind,
			MessageCount: sum.MessageCount,
			ByteSize:     sum.ByteSize,
		})
	}
	s.cacheSet(ctx, "totals_by_tier", totals)
	return totals, nil
}

// LastHourTotals returns per-category counts over the trailing hour, read
// from the minute counter view.
func (s *StatusService) LastHourTotals(ctx context.Context) ([]domain.CategoryCount, error) {
	var totals []domain.CategoryCount
	if s.cacheGet(ctx, "last_hour_totals", &totals) {
		return totals, nil
	}
	totals, err := s.counters.LastHourTotals(ctx, s.now().UTC().Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("last hour totals: %w", err)
	}
	s.cacheSet(ctx, "last_hour_totals", totals)
	return totals, nil
}

// IntersectionTotals returns the per-intersection aggregates.
func (s *StatusService) IntersectionTotals(ctx context.Context) ([]domain.IntersectionTotals, error) {
	var totals []domain.IntersectionTotals
	if s.cacheGet(ctx, "intersection_totals", &totals) {
		return totals, nil
	}
	totals, err := s.reader.IntersectionTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("intersection totals: %w", err)
	}
	s.cacheSet(ctx, "intersection_totals", totals)
	return totals, nil
}

// TotalMessageCount returns the working tier's lifetime record count.
func (s *StatusService) TotalMessageCount(ctx context.Context) (int64, error) {
	count, err := s.reader.TotalMessageCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("total message count: %w", err)
	}
	return count, nil
}

func (s *StatusService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Debug("status cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *StatusService) cacheSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, val); err != nil {
		s.logger.Debug("status cache write failed", "key", key, "error", err)
	}
}
