package notifications

import (
	"context"
	"log/slog"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
)

// LogSink writes every transition to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, ev domain.TransitionOccurred) error {
	s.logger.InfoContext(ctx, "Budget request status changed",
		slog.String("request_id", ev.RequestID),
		slog.String("department", ev.Department),
		slog.String("amount", ev.Amount.String()),
		slog.String("from_status", string(ev.FromStatus)),
		slog.String("to_status", string(ev.ToStatus)),
		slog.String("actor_id", ev.ActorID),
		slog.String("actor_role", string(ev.ActorRole)),
		slog.Bool("has_comment", ev.Comment != ""),
	)
	return nil
}

// TransitionRecorder counts transitions by edge and role.
type TransitionRecorder interface {
	RecordTransition(from, to, role string)
}

// MetricsSink feeds the transition counter.
type MetricsSink struct {
	recorder TransitionRecorder
}

func NewMetricsSink(r TransitionRecorder) *MetricsSink {
	return &MetricsSink{recorder: r}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Deliver(_ context.Context, ev domain.TransitionOccurred) error {
	s.recorder.RecordTransition(string(ev.FromStatus), string(ev.ToStatus), string(ev.ActorRole))
	return nil
}
