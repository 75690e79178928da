// Package stream publishes user mutation events to the bus. The publisher
// runs synchronously inside the mutation request, strictly after the primary
// store commit; this is a deliberate dual-write and nothing here retries or
// rolls back the mutation.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"usertrail/internal/event"
	"usertrail/internal/platform/metrics"
	dErrors "usertrail/pkg/domain-errors"
)

var tracer = otel.Tracer("usertrail/internal/event/stream")

// Bus is the transport contract the publisher needs: an ordered-per-key,
// at-least-once send with a bounded client-side timeout.
type Bus interface {
	Send(ctx context.Context, key, value []byte) error
}

// Publisher turns completed user mutations into Event Records on the bus,
// keyed by entity id so all events for one entity stay in send order.
type Publisher struct {
	bus     Bus
	logger  *slog.Logger
	metrics *metrics.UserService

	now   func() time.Time
	newID func() string
}

// Option configures optional publisher collaborators.
type Option func(*Publisher)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.UserService) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// NewPublisher constructs a publisher over the given bus.
func NewPublisher(bus Bus, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		bus:    bus,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// UserCreated publishes a CREATED event carrying the full creation snapshot.
func (p *Publisher) UserCreated(ctx context.Context, entityID int64, snapshot any) error {
	return p.publish(ctx, event.TypeCreated, entityID, snapshot)
}

// UserUpdated publishes an UPDATED event carrying only the changed fields.
func (p *Publisher) UserUpdated(ctx context.Context, entityID int64, changes any) error {
	return p.publish(ctx, event.TypeUpdated, entityID, changes)
}

// UserDeleted publishes a DELETED event with no payload.
func (p *Publisher) UserDeleted(ctx context.Context, entityID int64) error {
	return p.publish(ctx, event.TypeDeleted, entityID, nil)
}

// publish builds and sends one Event Record. A serialization failure is
// surfaced to the caller (it happens before any network effect); a bus-send
// failure is logged and swallowed — the mutation already committed and its
// HTTP outcome must not change. The audit trail for a swallowed failure is
// permanently missing.
func (p *Publisher) publish(ctx context.Context, eventType event.Type, entityID int64, snapshot any) error {
	msg := event.Message{
		EventID:        p.newID(),
		EventTimestamp: p.now().UnixMilli(),
		EventType:      eventType,
		EntityID:       entityID,
	}

	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize event payload")
		}
		payload := string(raw)
		msg.Payload = &payload
	}

	value, err := msg.Encode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event message")
	}

	ctx, span := tracer.Start(ctx, "user-events publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.Int64("entity.id", entityID),
			attribute.String("event.type", string(eventType)),
			attribute.String("event.id", msg.EventID),
		),
	)
	defer span.End()

	key := []byte(strconv.FormatInt(entityID, 10))
	if err := p.bus.Send(ctx, key, value); err != nil {
		span.RecordError(err)
		if p.metrics != nil {
			p.metrics.PublishFailures.WithLabelValues(string(eventType)).Inc()
		}
		p.logger.ErrorContext(ctx, "failed to publish user event, audit trail entry lost",
			"event_id", msg.EventID,
			"event_type", eventType,
			"entity_id", entityID,
			"error", err,
		)
		return nil
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(string(eventType)).Inc()
	}
	p.logger.InfoContext(ctx, "published user event",
		"event_id", msg.EventID,
		"event_type", eventType,
		"entity_id", entityID,
	)
	return nil
}
