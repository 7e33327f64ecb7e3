package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
// The data source location is the only mandatory setting.
type Config struct {
	DataSourceURL string
	HTTPAddr      string
	LogLevel      string
	LogFormat     string

	ShutdownTimeout time.Duration
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	SourceCacheSize int

	// Optional Kafka snapshot sink.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from the environment (and an optional .env file),
// applying defaults where unset. Validation problems are aggregated so one
// run reports every misconfigured variable.
func Load() (*Config, error) {
	// .env is a local-dev convenience; real env vars always win.
	_ = godotenv.Load()

	var errs *multierror.Error

	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	errs = multierror.Append(errs, err)

	refreshInterval, err := durationEnv("REFRESH_INTERVAL", 15*time.Minute)
	errs = multierror.Append(errs, err)

	fetchTimeout, err := durationEnv("FETCH_TIMEOUT", 30*time.Second)
	errs = multierror.Append(errs, err)

	cacheSize, err := intEnv("SOURCE_CACHE_SIZE", 16)
	errs = multierror.Append(errs, err)

	cfg := &Config{
		DataSourceURL:   os.Getenv("DATA_SOURCE_URL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RefreshInterval: refreshInterval,
		FetchTimeout:    fetchTimeout,
		SourceCacheSize: cacheSize,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: envOrDefault("KAFKA_SNAPSHOT_TOPIC", "hfmd-analytics-snapshots"),
	}

	if cfg.DataSourceURL == "" {
		errs = multierror.Append(errs, errors.New("DATA_SOURCE_URL is required"))
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		errs = multierror.Append(errs, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty"))
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		errs = multierror.Append(errs, errors.New("KAFKA_ENABLED is true but KAFKA_SNAPSHOT_TOPIC is empty"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
