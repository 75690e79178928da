package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"usertrail/internal/platform/config"
)

// Message is one delivered bus record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler processes one message. Returning an error marks the message as
// failed; the consumer logs it and keeps going (delivery is at-least-once,
// offsets for the poll are still committed).
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer is a group consumer over a single topic. Partitions fetched in
// one poll are processed concurrently, but records within a partition are
// handled strictly in delivery order on a single goroutine, which preserves
// the per-key FIFO contract.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// NewConsumer joins the consumer group for the configured topic.
func NewConsumer(cfg config.Kafka, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until ctx is cancelled. It returns ctx.Err() on shutdown and a
// wrapped error only when the client itself fails.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		g, gctx := errgroup.WithContext(ctx)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			records := p.Records
			topic, partition := p.Topic, p.Partition
			g.Go(func() error {
				for _, rec := range records {
					if err := gctx.Err(); err != nil {
						return err
					}
					msg := &Message{
						Topic:     rec.Topic,
						Partition: rec.Partition,
						Offset:    rec.Offset,
						Key:       rec.Key,
						Value:     rec.Value,
						Timestamp: rec.Timestamp,
					}
					if err := c.handler.Handle(gctx, msg); err != nil {
						// One bad message must not stall its partition;
						// later keys on this partition are unrelated
						// entities.
						c.logger.Error("message handler failed, skipping message",
							"topic", topic,
							"partition", partition,
							"offset", rec.Offset,
							"key", string(rec.Key),
							"error", err,
						)
					}
				}
				return nil
			})
		})
		if err := g.Wait(); err != nil {
			return err
		}
	}
}
