// Package kafka wraps the franz-go client behind small producer and consumer
// types so domain packages depend on a narrow bus contract instead of the
// driver API.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"usertrail/internal/platform/config"
)

// Producer publishes records to a single topic, keyed for per-key ordering.
// All records sharing a key land on the same partition and are delivered to
// consumers in send order relative to each other.
type Producer struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
}

// NewProducer connects a producer for the configured topic.
func NewProducer(cfg config.Kafka) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		// Key-hash partitioning is the ordering contract: same key, same
		// partition, FIFO. Stated explicitly rather than relying on the
		// client default.
		kgo.RecordPartitioner(kgo.StickyKeyPartitioner(nil)),
		kgo.ProduceRequestTimeout(cfg.ProduceTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic, timeout: cfg.ProduceTimeout}, nil
}

// Send synchronously publishes value under key and waits for broker
// acknowledgement, bounded by the configured produce timeout. The caller
// decides what a send failure means; Send itself never retries.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	record := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
