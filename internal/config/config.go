package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka observation publishing configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		UpstreamBaseURL: envOrDefault("UPSTREAM_BASE_URL", "https://smart-urban-heat-map.ch/api/v2"),
		UpstreamTimeout: upstreamTimeout,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "sensorthings-observations"),
	}

	u, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid UPSTREAM_BASE_URL %q", cfg.UpstreamBaseURL)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
