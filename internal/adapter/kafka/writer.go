package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes measurements to the configured topic.
type Writer struct {
	writer *kafkago.Writer
	source string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the measurement topic. source is
// attached to every message as a header and may be empty.
func NewWriter(cfg *config.Config, source string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, source: source, logger: logger}
}

// Publish writes every measurement in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, records domain.RecordSet) error {
	msgs := make([]kafkago.Message, 0, records.Len())
	for _, key := range records.Keys() {
		for _, m := range records[key] {
			msg, err := serializeToMessage(key, m, w.source)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("measurements published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
