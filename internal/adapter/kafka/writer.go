package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/printerm420/SalmonFlow/internal/config"
	"github.com/printerm420/SalmonFlow/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces enriched readings to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple flow readings to the sink
// Kafka topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, readings []domain.FlowReading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FlowReading into a Kafka message. The site
// key keeps each gauge's readings ordered within a partition.
func serializeToMessage(reading domain.FlowReading) (kafkago.Message, error) {
	data, err := json.Marshal(reading)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize flow reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(reading.Site),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "zone", Value: []byte(reading.Zone.Label)},
			{Key: "processed_at", Value: []byte(reading.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
