package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	Serve           bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Cleaning and display settings.
	RollingWindowSize    int
	OutlierToleranceCM   float64
	DisplayRollingWindow int

	// Sensor log layout.
	TimestampColumn int
	ValueColumn     int

	ReportPath  string
	LoadRetries int

	// Kafka publishing of daily aggregates.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables from a .env file (DOTENV_PATH, default ".env") fill in anything not
// already set in the environment; a missing file is not an error.
func Load() (*Config, error) {
	if err := loadDotenv(envOrDefault("DOTENV_PATH", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	windowSize, err := parsePositiveInt("ROLLING_WINDOW_SIZE", 50)
	if err != nil {
		return nil, err
	}
	displayWindow, err := parsePositiveInt("DISPLAY_ROLLING_WINDOW", 50)
	if err != nil {
		return nil, err
	}
	loadRetries, err := parsePositiveInt("LOAD_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	tolerance, err := parseTolerance()
	if err != nil {
		return nil, err
	}

	tsColumn, err := parseColumn("TIMESTAMP_COLUMN", 0)
	if err != nil {
		return nil, err
	}
	valueColumn, err := parseColumn("VALUE_COLUMN", 2)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		Serve:           os.Getenv("SERVE") == "true",
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RollingWindowSize:    windowSize,
		OutlierToleranceCM:   tolerance,
		DisplayRollingWindow: displayWindow,

		TimestampColumn: tsColumn,
		ValueColumn:     valueColumn,

		ReportPath:  envOrDefault("REPORT_PATH", "graphs/report.json"),
		LoadRetries: loadRetries,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "depth-daily-aggregates"),
	}

	if cfg.TimestampColumn == cfg.ValueColumn {
		return nil, errors.New("TIMESTAMP_COLUMN and VALUE_COLUMN must differ")
	}
	if cfg.Serve && cfg.HTTPAddr == "" {
		return nil, errors.New("SERVE is true but HTTP_ADDR is empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// envOrDefault returns the trimmed value of key, or fallback when key is unset.
// A variable set to the empty string stays empty; REPORT_PATH="" relies on this
// to disable the file report.
func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := envOrDefault(key, "")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseColumn(key string, fallback int) (int, error) {
	s := envOrDefault(key, "")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return n, nil
}

func parseTolerance() (float64, error) {
	s := envOrDefault("OUTLIER_TOLERANCE_CM", "")
	if s == "" {
		return 10.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("invalid OUTLIER_TOLERANCE_CM: must be a finite, non-negative number")
	}
	return v, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
