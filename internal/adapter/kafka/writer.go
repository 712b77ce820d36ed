package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/pest-risk/internal/config"
	"github.com/couchcryptid/pest-risk/internal/domain"
)

// Writer publishes alert records to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured alert topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Write serializes every record and publishes them in a single WriteMessages
// call. Records of the same crop share a partition.
func (w *Writer) Write(ctx context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d alerts: %w", len(msgs), err)
	}
	w.logger.Debug("alerts published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AlertRecord into a Kafka message keyed by
// crop.
func serializeToMessage(rec domain.AlertRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strings.ToLower(rec.Crop)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk", Value: []byte(rec.Tier().Label())},
			{Key: "recorded_at", Value: []byte(rec.Date.Format(time.RFC3339))},
		},
	}, nil
}
