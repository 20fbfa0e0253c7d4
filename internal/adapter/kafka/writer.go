package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/config"
	"github.com/couchcryptid/music-event-insights/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces geography summaries to a Kafka topic.
// It implements pipeline.SummaryLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes summaries in a single WriteMessages
// call. Messages are keyed by geography so reruns land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, summaries []domain.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d summaries to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("summaries written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Summary into a Kafka message.
func serializeToMessage(s domain.Summary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary %s: %w", s.MessageKey(), err)
	}
	return kafkago.Message{
		Key:   []byte(s.MessageKey()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "level", Value: []byte(s.Geo.Level.String())},
			{Key: "generated_at", Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
