package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Model sources the inference service can load from.
const (
	ModelSourceFile     = "file"
	ModelSourcePostgres = "postgres"
)

// Config holds all runtime configuration for the stroke service.
type Config struct {
	GRPCPort      string
	HTTPPort      string
	DatabaseURL   string
	MigrationsDir string
	KafkaBroker   string
	KafkaTopic    string
	KafkaGroup    string
	Environment   string
	LogLevel      string
	LogFormat     string
	LogFile       string
	ClientURL     string
	ModelPath     string
	ModelSource   string
	TLSCertFile   string
	TLSKeyFile    string
	OTLPEndpoint  string
	WatchDebounce time.Duration
	WatchModel    bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		GRPCPort:      getEnv("GRPC_PORT", "8090"),
		HTTPPort:      getEnv("HTTP_PORT", "9090"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "services/stroke-service/migrations"),
		KafkaBroker:   getEnv("KAFKA_BROKER", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "stroke.model.trained"),
		KafkaGroup:    getEnv("KAFKA_CONSUMER_GROUP", defaultGroup()),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       getEnv("LOG_FILE", ""),
		ClientURL:     getEnv("CLIENT_URL", "http://localhost:3000"),
		ModelPath:     getEnv("MODEL_PATH", "model.gob"),
		ModelSource:   strings.ToLower(getEnv("MODEL_SOURCE", ModelSourceFile)),
		TLSCertFile:   getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:    getEnv("TLS_KEY_FILE", ""),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	if cfg.WatchModel, err = strconv.ParseBool(getEnv("WATCH_MODEL", "false")); err != nil {
		return nil, fmt.Errorf("config: WATCH_MODEL: %w", err)
	}
	if cfg.WatchDebounce, err = time.ParseDuration(getEnv("WATCH_DEBOUNCE", "500ms")); err != nil {
		return nil, fmt.Errorf("config: WATCH_DEBOUNCE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("config: TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	switch c.ModelSource {
	case ModelSourceFile:
		if c.ModelPath == "" {
			return fmt.Errorf("config: MODEL_PATH is required when MODEL_SOURCE=file")
		}
	case ModelSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when MODEL_SOURCE=postgres")
		}
		if c.WatchModel {
			return fmt.Errorf("config: WATCH_MODEL only applies to MODEL_SOURCE=file")
		}
	default:
		return fmt.Errorf("config: unknown MODEL_SOURCE %q", c.ModelSource)
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// RegistryEnabled reports whether a PostgreSQL model registry is configured.
func (c *Config) RegistryEnabled() bool {
	return c.DatabaseURL != ""
}

// TLSEnabled reports whether the listeners serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != ""
}

// TracingEnabled reports whether spans are exported to an OTLP collector.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

// EventsEnabled reports whether a Kafka broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.KafkaBroker != ""
}

func defaultGroup() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "stroked"
	}
	return "stroked-" + host
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
