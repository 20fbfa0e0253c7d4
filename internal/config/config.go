package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Summary export. An empty broker list disables it.
	KafkaBrokers      []string
	KafkaSummaryTopic string
	BatchSize         int
	ExportMaxAttempts int
}

// ExportEnabled reports whether summaries are published to Kafka.
func (c *Config) ExportEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	maxAttempts, err := parseMaxAttempts()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		DataPath:          sharedcfg.EnvOrDefault("DATA_PATH", "data/events.csv"),
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		KafkaBrokers:      brokers,
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "geo-summaries"),
		BatchSize:         batchSize,
		ExportMaxAttempts: maxAttempts,
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.ExportEnabled() && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_SUMMARY_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseMaxAttempts() (int, error) {
	s := os.Getenv("EXPORT_MAX_ATTEMPTS")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 20 {
		return 0, errors.New("invalid EXPORT_MAX_ATTEMPTS: must be between 1 and 20")
	}
	return n, nil
}
