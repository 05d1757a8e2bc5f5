package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/adapter/metrics"
	"github.com/roadgrid/cvstore/internal/domain"
)

// RetentionService purges one tier according to the persistent retention
// configuration. Purge granularity is the whole calendar day: the engine
// never removes part of a day, so a size purge may overshoot by at most one
// day's worth of data.
type RetentionService struct {
	configs domain.ConfigStore
	tier    domain.TierStore
	kind    domain.TierKind
	metrics *metrics.WorkerMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewRetentionService creates the purge engine for one tier.
func NewRetentionService(configs domain.ConfigStore, tier domain.TierStore, kind domain.TierKind, m *metrics.WorkerMetrics, logger *slog.Logger) *RetentionService {
	return &RetentionService{
		configs: configs,
		tier:    tier,
		kind:    kind,
		metrics: m,
		logger:  logger.With("tier", string(kind)),
		now:     time.Now,
	}
}

// Purge runs one purge pass. Without a stored configuration, or outside the
// configured maintenance window, it is a no-op.
func (s *RetentionService) Purge(ctx context.Context) error {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return fmt.Errorf("load retention config: %w", err)
	}
	if cfg == nil {
		s.logger.Debug("no retention configuration stored, skipping purge")
		return nil
	}

	now := s.now().UTC()
	if !inMaintenanceWindow(now, cfg.StartTime, cfg.EndTime) {
		s.logger.Debug("outside maintenance window, skipping purge",
			"now", now.Format("15:04"),
			"windowStart", cfg.StartTime.Format("15:04"),
			"windowEnd", cfg.EndTime.Format("15:04"))
		return nil
	}

	policy := cfg.PolicyFor(s.kind)
	switch policy.Strategy {
	case domain.StorageTypeAge:
		return s.purgeByAge(ctx, now, policy.MaxDays)
	case domain.StorageTypeSize:
		return s.purgeBySize(ctx, policy.MaxBytes)
	default:
		return fmt.Errorf("unknown retention strategy %q", policy.Strategy)
	}
}

// purgeByAge drops everything up to the end of the day maxDays before now.
func (s *RetentionService) purgeByAge(ctx context.Context, now time.Time, maxDays int) error {
	cutoff := endOfDay(now.AddDate(0, 0, -maxDays))
	if err := s.tier.DeleteBefore(ctx, cutoff); err != nil {
		return fmt.Errorf("purge by age: %w", err)
	}
	s.logger.Info("age purge complete", "cutoff", cutoff)
	return nil
}

// purgeBySize walks daily rollups oldest-first, accumulating whole days
// until the running byte total reaches the excess over the cap, then drops
// everything up to the end of the last accumulated day.
func (s *RetentionService) purgeBySize(ctx context.Context, maxBytes int64) error {
	totals, err := s.tier.Totals(ctx)
	if err != nil {
		return fmt.Errorf("read tier totals: %w", err)
	}
	excess := bytesToPurge(totals.ByteSize, maxBytes)
	if excess == 0 {
		s.logger.Debug("tier under size cap, nothing to purge",
			"byteSize", totals.ByteSize, "maxBytes", maxBytes)
		return nil
	}

	var (
		running int64
		days    int
		cursor  time.Time
	)
	for running < excess {
		rollup, err := s.tier.NextOldestDayAfter(ctx, cursor)
		if err != nil {
			return fmt.Errorf("walk daily rollups: %w", err)
		}
		if rollup == nil {
			break
		}
		cursor = rollup.Day
		running += rollup.ByteSize
		days++
	}
	if days == 0 {
		return nil
	}

	cutoff := endOfDay(cursor)
	if err := s.tier.DeleteBefore(ctx, cutoff); err != nil {
		return fmt.Errorf("purge by size: %w", err)
	}
	if s.metrics != nil {
		s.metrics.PurgedDays.Add(float64(days))
	}
	s.logger.Info("size purge complete",
		"cutoff", cutoff, "days", days, "purgedBytes", running, "excessBytes", excess)
	return nil
}

// bytesToPurge returns how far total exceeds max, zero when under the cap.
func bytesToPurge(total, max int64) int64 {
	if total > max {
		return total - max
	}
	return 0
}

// inMaintenanceWindow reports whether now falls inside the configured
// window. Only the hour and minute of the bounds are meaningful; they are
// recomputed against the current day, with the start pinned to second 0 and
// the end to second 59.
func inMaintenanceWindow(now, start, end time.Time) bool {
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
	windowEnd := time.Date(now.Year(), now.Month(), now.Day(), end.Hour(), end.Minute(), 59, 0, time.UTC)
	return !now.Before(windowStart) && !now.After(windowEnd)
}

// endOfDay returns 23:59:59 UTC on t's calendar day.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
