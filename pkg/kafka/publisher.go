package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"warehouse/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Config holds Kafka producer settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes stock events to a Kafka topic, keyed by product ID so
// every event of one product lands on the same partition.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewPublisher creates a Publisher. No connection is made until the first write.
//
// The writer is asynchronous: Publish returns once the event is batched and
// delivery failures are logged from the writer's completion callback.
func NewPublisher(cfg Config, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireOne,
			Async:        true,
			Completion:   logDeliveryFailure(logger),
		},
		logger: logger,
	}
}

func logDeliveryFailure(logger *zap.Logger) func(messages []kafkago.Message, err error) {
	return func(messages []kafkago.Message, err error) {
		if err != nil {
			logger.Warn("Failed to deliver stock events", zap.Int("count", len(messages)), zap.Error(err))
		}
	}
}

// Publish serializes event as JSON and hands it to the writer. Partition
// metadata is looked up on the first write, so an unreachable cluster
// still fails here within writeTimeout.
func (p *Publisher) Publish(event events.StockEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stock event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(event.RoutingKey())},
		},
		Time: event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write stock event to %s: %w", p.writer.Topic, err)
	}

	p.logger.Debug("Sent stock event", zap.String("type", event.RoutingKey()), zap.Int64("product_id", event.ProductID))
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
