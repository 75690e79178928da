// Package listener consumes user events from the bus and appends them to the
// audit log, one append per delivered message.
//
// Error policy: swallow-and-continue. A message that fails to decode or
// persist is logged and dropped so one poison message cannot stall its
// partition or crash the process. The trade-off is deliberate: a dropped
// message is lost audit data, not an availability incident. Delivery is
// at-least-once and nothing deduplicates on event id — a redelivery is
// idempotent only when it carries the same timestamp as the first delivery,
// otherwise it lands as a distinct row.
package listener

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"usertrail/internal/event"
	"usertrail/internal/platform/kafka"
	"usertrail/internal/platform/metrics"
)

//go:generate mockgen -destination=../mocks/saver.go -package=mocks usertrail/internal/event/listener EventSaver

var tracer = otel.Tracer("usertrail/internal/event/listener")

// EventSaver persists one audit record per consumed event.
type EventSaver interface {
	Save(ctx context.Context, record event.Record) error
}

// Listener maps bus messages onto audit records.
type Listener struct {
	saver   EventSaver
	logger  *slog.Logger
	metrics *metrics.EventService
}

// Option configures optional listener collaborators.
type Option func(*Listener)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.EventService) Option {
	return func(l *Listener) { l.metrics = m }
}

// New constructs a listener that persists through saver.
func New(saver EventSaver, logger *slog.Logger, opts ...Option) *Listener {
	l := &Listener{saver: saver, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Handle processes one delivered message. It always returns nil: failures
// are logged and counted, never propagated, so the partition keeps moving.
func (l *Listener) Handle(ctx context.Context, msg *kafka.Message) error {
	ctx, span := tracer.Start(ctx, "user-events consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.Int("bus.partition", int(msg.Partition)),
			attribute.Int64("bus.offset", msg.Offset),
		),
	)
	defer span.End()

	m, err := event.DecodeMessage(msg.Value)
	if err != nil {
		span.RecordError(err)
		l.drop(ctx, "decode", err,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)
		return nil
	}

	record := event.RecordFrom(m)
	if err := l.saver.Save(ctx, record); err != nil {
		span.RecordError(err)
		l.drop(ctx, "store", err,
			"event_id", m.EventID,
			"event_type", m.EventType,
			"entity_id", m.EntityID,
		)
		return nil
	}

	if l.metrics != nil {
		l.metrics.EventsConsumed.WithLabelValues(record.EventType).Inc()
	}
	l.logger.InfoContext(ctx, "appended audit record",
		"event_id", m.EventID,
		"event_type", m.EventType,
		"entity_id", m.EntityID,
		"event_timestamp", m.EventTimestamp,
	)
	return nil
}

func (l *Listener) drop(ctx context.Context, stage string, err error, args ...any) {
	if l.metrics != nil {
		l.metrics.EventsDropped.WithLabelValues(stage).Inc()
	}
	l.logger.ErrorContext(ctx, "dropping unprocessable event",
		append([]any{"stage", stage, "error", err}, args...)...,
	)
}
