package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadgrid/cvstore/internal/adapter/metrics"
	"github.com/roadgrid/cvstore/internal/classifier"
	"github.com/roadgrid/cvstore/internal/domain"
)

// MessageLogService consumes raw telemetry envelopes for one tier,
// classifies them and persists the valid ones. Unknown and non-parseable
// envelopes are logged and counted, never stored. The same service type
// backs both the working tier and the archive tier; they differ only in
// the MessageWriter wired in.
type MessageLogService struct {
	store   domain.MessageWriter
	tier    domain.TierKind
	metrics *metrics.WorkerMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewMessageLogService creates the ingest service for one tier.
func NewMessageLogService(store domain.MessageWriter, tier domain.TierKind, m *metrics.WorkerMetrics, logger *slog.Logger) *MessageLogService {
	return &MessageLogService{
		store:   store,
		tier:    tier,
		metrics: m,
		logger:  logger.With("tier", string(tier)),
		now:     time.Now,
	}
}

// Process handles one raw envelope from the category's topic. Errors mean
// the envelope was dropped for this tier; the caller logs and moves on.
func (s *MessageLogService) Process(ctx context.Context, raw []byte, category domain.Category) error {
	res, err := classifier.Classify(raw, category, s.now())
	if err != nil {
		s.count(category, "dropped")
		return fmt.Errorf("classify %s envelope: %w", category, err)
	}

	switch res.Kind {
	case classifier.KindValid:
		if err := s.store.Insert(ctx, *res.Record); err != nil {
			s.count(category, "error")
			return fmt.Errorf("insert %s record: %w", category, err)
		}
		s.count(category, "valid")
		if s.metrics != nil {
			s.metrics.BytesTotal.Add(float64(res.Record.ByteSize))
		}

	case classifier.KindUnknown:
		s.logger.Error("unknown message shape received",
			"category", string(category),
			"messageType", res.Unknown.Type,
			"errorType", res.Unknown.ErrorType,
			"data", res.Unknown.Data)
		s.count(category, "unknown")

	case classifier.KindNonParseable:
		s.logger.Error("non-parseable message received",
			"category", string(category),
			"messageType", res.NonParseable.Type,
			"errorType", res.NonParseable.ErrorType,
			"cause", res.NonParseable.Cause,
			"data", res.NonParseable.Data)
		s.count(category, "nonparseable")
	}
	return nil
}

func (s *MessageLogService) count(category domain.Category, outcome string) {
	if s.metrics != nil {
		s.metrics.MessagesTotal.WithLabelValues(string(category), outcome).Inc()
	}
}
