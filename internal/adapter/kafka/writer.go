package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/depth-log-etl/internal/config"
	"github.com/couchcryptid/depth-log-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the loader uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes the daily aggregates of a report to a Kafka topic, one
// message per day keyed by the ISO date.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// LoadReport serializes every daily aggregate and publishes them in a single
// WriteMessages call. A report without aggregates publishes nothing.
func (w *Writer) LoadReport(ctx context.Context, report *domain.Report) error {
	if len(report.Daily) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(report.Daily))
	for i := range report.Daily {
		msg, err := serializeToMessage(report, i)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("daily aggregates published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals the i-th daily aggregate of report into a
// Kafka message.
func serializeToMessage(report *domain.Report, i int) (kafkago.Message, error) {
	agg := report.Daily[i]
	data, err := json.Marshal(agg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily aggregate: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(agg.Day.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(report.Source)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
			{Key: "is_latest", Value: []byte(strconv.FormatBool(i == len(report.Daily)-1))},
		},
	}, nil
}
