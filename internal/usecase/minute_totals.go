package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roadgrid/cvstore/internal/domain"
)

const (
	// watermarkFallback bounds the first aggregation run when no counters
	// exist yet: it looks back this far instead of scanning everything.
	watermarkFallback = 5 * time.Minute

	// counterRetention is how long minute buckets are kept. The view only
	// serves last-hour queries, so anything older is dead weight.
	counterRetention = 65 * time.Minute
)

// MinuteTotalsService incrementally maintains the per-minute, per-category
// counter view over the working tier. Each run reads records newer than the
// watermark left by the previous run, so every record is counted exactly
// once as long as inserts carry monotonic timestamps.
type MinuteTotalsService struct {
	messages domain.MessageFinder
	counters domain.MinuteCounterStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewMinuteTotalsService creates the aggregation engine.
func NewMinuteTotalsService(messages domain.MessageFinder, counters domain.MinuteCounterStore, logger *slog.Logger) *MinuteTotalsService {
	return &MinuteTotalsService{
		messages: messages,
		counters: counters,
		logger:   logger,
		now:      time.Now,
	}
}

// Update runs one aggregation pass and returns the watermark it read from.
// On error the counter view is unchanged, so the next run re-reads from the
// same watermark rather than skipping records.
func (s *MinuteTotalsService) Update(ctx context.Context) (time.Time, error) {
	now := s.now().UTC()

	last, err := s.counters.LastModified(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read counter watermark: %w", err)
	}
	watermark := now.Add(-watermarkFallback)
	if last != nil {
		watermark = last.UTC()
	}

	records, err := s.messages.FindAfter(ctx, watermark)
	if err != nil {
		return watermark, fmt.Errorf("read records after watermark: %w", err)
	}

	if len(records) > 0 {
		counters := bucketByMinute(records, now)
		if err := s.counters.Merge(ctx, counters); err != nil {
			return watermark, fmt.Errorf("merge minute counters: %w", err)
		}
		s.logger.Debug("merged minute counters",
			"since", watermark, "records", len(records), "buckets", len(counters))
	}

	// Trim failures are logged but do not fail the run; the next pass
	// trims again.
	if err := s.counters.TrimBefore(ctx, now.Add(-counterRetention)); err != nil {
		s.logger.Warn("failed to trim stale minute counters", "error", err)
	}

	return watermark, nil
}

// bucketByMinute groups records into (minute, category) counters stamped
// with the run time. Output order is deterministic: minute, then category.
func bucketByMinute(records []domain.MessageRecord, runTime time.Time) []domain.MinuteCounter {
	type bucket struct {
		minute   time.Time
		category domain.Category
	}
	counts := make(map[bucket]int64)
	for _, rec := range records {
		key := bucket{minute: rec.TimeStamp.UTC().Truncate(time.Minute), category: rec.Category}
		counts[key]++
	}

	counters := make([]domain.MinuteCounter, 0, len(counts))
	for key, n := range counts {
		counters = append(counters, domain.MinuteCounter{
			Minute:       key.minute,
			Category:     key.category,
			MessageCount: n,
			LastModified: runTime,
		})
	}
	sort.Slice(counters, func(i, j int) bool {
		if !counters[i].Minute.Equal(counters[j].Minute) {
			return counters[i].Minute.Before(counters[j].Minute)
		}
		return counters[i].Category < counters[j].Category
	})
	return counters
}
