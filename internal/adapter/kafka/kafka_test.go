package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/depth-log-etl/internal/config"
	"github.com/couchcryptid/depth-log-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func twoDayReport() *domain.Report {
	return &domain.Report{
		Source:      "feeds.csv",
		GeneratedAt: time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
		Daily: []domain.DailyAggregate{
			{Day: domain.Day{Year: 2023, Month: time.May, Day: 1}, Mean: 100.5, Count: 24},
			{Day: domain.Day{Year: 2023, Month: time.May, Day: 2}, Mean: 99.75, Count: 12},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	report := twoDayReport()

	msg, err := serializeToMessage(report, 1)
	require.NoError(t, err)

	assert.Equal(t, []byte("2023-05-02"), msg.Key)
	assert.JSONEq(t, `{"day":"2023-05-02","mean":99.75,"count":12}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("feeds.csv"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)
	assert.Equal(t, "is_latest", msg.Headers[2].Key)
	assert.Equal(t, []byte("true"), msg.Headers[2].Value)
}

func TestLoadReport_OneMessagePerDay(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.LoadReport(context.Background(), twoDayReport()))
	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("2023-05-01"), fw.msgs[0].Key)
	assert.Equal(t, []byte("false"), fw.msgs[0].Headers[2].Value)
	assert.Equal(t, []byte("true"), fw.msgs[1].Headers[2].Value)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestLoadReport_EmptyReport(t *testing.T) {
	fw := &fakeWriter{err: errors.New("should not be called")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.LoadReport(context.Background(), &domain.Report{}))
	assert.Empty(t, fw.msgs)
}

func TestLoadReport_WriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.LoadReport(context.Background(), twoDayReport())
	assert.EqualError(t, err, "broker down")
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "depth.daily"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "kafka", w.Name())

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "depth.daily", kw.Topic)
	require.NoError(t, w.Close())
}
