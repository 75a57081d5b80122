package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Serve)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.RollingWindowSize)
	assert.InDelta(t, 10.0, cfg.OutlierToleranceCM, 1e-12)
	assert.Equal(t, 50, cfg.DisplayRollingWindow)
	assert.Equal(t, 0, cfg.TimestampColumn)
	assert.Equal(t, 2, cfg.ValueColumn)
	assert.Equal(t, "graphs/report.json", cfg.ReportPath)
	assert.Equal(t, 3, cfg.LoadRetries)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "depth-daily-aggregates", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SERVE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("ROLLING_WINDOW_SIZE", "20")
	t.Setenv("OUTLIER_TOLERANCE_CM", "2.5")
	t.Setenv("DISPLAY_ROLLING_WINDOW", "10")
	t.Setenv("TIMESTAMP_COLUMN", "1")
	t.Setenv("VALUE_COLUMN", "0")
	t.Setenv("REPORT_PATH", "out/r.json")
	t.Setenv("LOAD_RETRIES", "5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Serve)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.RollingWindowSize)
	assert.InDelta(t, 2.5, cfg.OutlierToleranceCM, 1e-12)
	assert.Equal(t, 10, cfg.DisplayRollingWindow)
	assert.Equal(t, 1, cfg.TimestampColumn)
	assert.Equal(t, 0, cfg.ValueColumn)
	assert.Equal(t, "out/r.json", cfg.ReportPath)
	assert.Equal(t, 5, cfg.LoadRetries)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
}

func TestLoad_EmptyReportPathDisablesReport(t *testing.T) {
	t.Setenv("REPORT_PATH", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.ReportPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"ROLLING_WINDOW_SIZE", "0", "ROLLING_WINDOW_SIZE"},
		{"ROLLING_WINDOW_SIZE", "ten", "ROLLING_WINDOW_SIZE"},
		{"DISPLAY_ROLLING_WINDOW", "-3", "DISPLAY_ROLLING_WINDOW"},
		{"LOAD_RETRIES", "0", "LOAD_RETRIES"},
		{"OUTLIER_TOLERANCE_CM", "-1", "OUTLIER_TOLERANCE_CM"},
		{"OUTLIER_TOLERANCE_CM", "NaN", "OUTLIER_TOLERANCE_CM"},
		{"OUTLIER_TOLERANCE_CM", "wide", "OUTLIER_TOLERANCE_CM"},
		{"VALUE_COLUMN", "-1", "VALUE_COLUMN"},
		{"VALUE_COLUMN", "0", "must differ"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", defaultBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
}

func TestLoad_ServeWithoutAddr(t *testing.T) {
	t.Setenv("SERVE", "true")
	t.Setenv("HTTP_ADDR", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_ADDR")
}

func TestLoad_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_TOPIC=from-dotenv\nLOG_LEVEL=warn\n"), 0o600))

	t.Setenv("DOTENV_PATH", path)
	t.Setenv("LOG_LEVEL", "error") // the environment wins over the file
	t.Cleanup(func() { _ = os.Unsetenv("KAFKA_TOPIC") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.KafkaTopic)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_MissingDotenvIgnored(t *testing.T) {
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "absent.env"))
	_, err := Load()
	require.NoError(t, err)
}
