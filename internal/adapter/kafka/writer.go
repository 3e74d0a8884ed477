package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-hail/internal/config"
	"github.com/couchcryptid/storm-data-hail/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces product summaries to a Kafka topic.
// It implements pipeline.ProductPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one product summary and writes it keyed by its ID, so
// retrievals for the same site hash to a stable partition.
func (w *Writer) Publish(ctx context.Context, summary domain.ProductSummary) error {
	msg, err := serializeToMessage(summary)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write product summary %s: %w", summary.ID, err)
	}
	w.logger.Debug("product summary published", "id", summary.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ProductSummary into a Kafka message.
func serializeToMessage(summary domain.ProductSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize product summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mesh_method", Value: []byte(summary.Method)},
			{Key: "computed_at", Value: []byte(summary.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
