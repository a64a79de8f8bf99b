package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix prefixes every dead-letter topic.
const DLQTopicPrefix = "shop.dlq"

// DLQTopic returns the dead-letter topic for a named source of failures, for
// example DLQTopic("product-index") == "shop.dlq.product-index".
func DLQTopic(source string) string {
	return DLQTopicPrefix + "." + source
}

// DLQProducer records work that could not be completed so it can be inspected
// or replayed later.
type DLQProducer struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewDLQProducer creates a DLQ producer that writes one message per call.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	cfg := DefaultProducerConfig(brokers)
	cfg.BatchSize = 1
	cfg.BatchTimeout = 100 * time.Millisecond
	return NewDLQProducerWithWriter(newWriter(cfg), logger)
}

// NewDLQProducerWithWriter creates a DLQ producer on top of an existing writer.
func NewDLQProducerWithWriter(w MessageWriter, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{writer: w, logger: logger}
}

// Publish writes event to DLQTopic(source). The failure cause and attempt
// count travel as dlq.* headers.
func (d *DLQProducer) Publish(ctx context.Context, source string, event *Event, cause error, attempts int) error {
	topic := DLQTopic(source)
	msg, err := eventMessage(topic, event)
	if err != nil {
		return err
	}
	msg.Headers = append(msg.Headers,
		kafka.Header{Key: "dlq.source", Value: []byte(source)},
		kafka.Header{Key: "dlq.attempts", Value: []byte(strconv.Itoa(attempts))},
		kafka.Header{Key: "dlq.failed_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	if cause != nil {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "dlq.error", Value: []byte(cause.Error())})
	}
	InjectTrace(ctx, &msg)

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		d.logger.ErrorContext(ctx, "failed to publish to DLQ",
			slog.String("dlq_topic", topic),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish to DLQ %s: %w", topic, err)
	}

	dlqPublished.WithLabelValues(source).Inc()
	d.logger.WarnContext(ctx, "message sent to DLQ",
		slog.String("dlq_topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.Int("attempts", attempts),
	)
	return nil
}

// Close closes the underlying writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
