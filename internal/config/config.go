package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
	GRPCPort int    `mapstructure:"grpc_port"` // gRPC health server port, 0 disables it
}

// DatasetConfig represents where the flotation dataset is loaded from
type DatasetConfig struct {
	Source  string        `mapstructure:"source"`  // file (default), http, postgres
	Path    string        `mapstructure:"path"`    // CSV path for the file source
	URL     string        `mapstructure:"url"`     // CSV URL for the http source
	DSN     string        `mapstructure:"dsn"`     // Connection string for the postgres source
	Table   string        `mapstructure:"table"`   // Table for the postgres source
	Retries int           `mapstructure:"retries"` // Max retries for the http source
	Timeout time.Duration `mapstructure:"timeout"` // Per-load timeout
}

// IngestConfig represents live record ingestion from a message queue
type IngestConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Type          string `mapstructure:"type"`           // Queue type: nats (default), redis, kafka, memory
	URL           string `mapstructure:"url"`            // Queue server URL (e.g., nats://localhost:4222)
	Subject       string `mapstructure:"subject"`        // Subject, stream or topic carrying records
	ConsumerGroup string `mapstructure:"consumer_group"` // Durable consumer / group name
	NodeID        string `mapstructure:"node_id"`        // Consumer name within the group
	Password      string `mapstructure:"password"`       // Optional authentication

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "dashboard")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// AnalyticsConfig holds engine defaults applied when a request omits them
type AnalyticsConfig struct {
	ForecastHorizon     int    `mapstructure:"forecast_horizon"`      // Days to forecast
	MaxForecastHorizon  int    `mapstructure:"max_forecast_horizon"`  // Upper bound accepted from requests
	MovingAverageWindow int    `mapstructure:"moving_average_window"` // Trailing window of the smoothed trend
	Cadence             string `mapstructure:"cadence"`               // daily, observed
	CorrelationMode     string `mapstructure:"correlation_mode"`      // independent, pairwise
	HistogramBins       int    `mapstructure:"histogram_bins"`        // Distribution chart bins
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset config: %w", err)
	}

	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port: %d", c.GRPCPort)
	}

	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("http_port and grpc_port cannot be the same")
	}

	return nil
}

// Validate validates dataset configuration
func (c *DatasetConfig) Validate() error {
	switch c.Source {
	case "", "file":
		if c.Path == "" {
			return fmt.Errorf("dataset.path is required for the file source")
		}
	case "http":
		if c.URL == "" {
			return fmt.Errorf("dataset.url is required for the http source")
		}
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("dataset.dsn is required for the postgres source")
		}
		if c.Table == "" {
			return fmt.Errorf("dataset.table is required for the postgres source")
		}
	default:
		return fmt.Errorf("dataset.source must be one of: file, http, postgres")
	}

	if c.Retries < 0 {
		return fmt.Errorf("dataset.retries cannot be negative")
	}

	return nil
}

// Validate validates ingest configuration
func (c *IngestConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Type {
	case "", "nats", "redis", "memory":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("ingest.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("ingest.type must be one of: nats, redis, kafka, memory")
	}

	if c.Subject == "" {
		return fmt.Errorf("ingest.subject is required")
	}

	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	if c.ForecastHorizon < 1 {
		return fmt.Errorf("analytics.forecast_horizon must be at least 1")
	}

	if c.MaxForecastHorizon < c.ForecastHorizon {
		return fmt.Errorf("analytics.max_forecast_horizon cannot be less than forecast_horizon")
	}

	if c.MovingAverageWindow < 1 {
		return fmt.Errorf("analytics.moving_average_window must be at least 1")
	}

	if c.Cadence != "daily" && c.Cadence != "observed" {
		return fmt.Errorf("analytics.cadence must be 'daily' or 'observed'")
	}

	if c.CorrelationMode != "independent" && c.CorrelationMode != "pairwise" {
		return fmt.Errorf("analytics.correlation_mode must be 'independent' or 'pairwise'")
	}

	if c.HistogramBins < 1 {
		return fmt.Errorf("analytics.histogram_bins must be at least 1")
	}

	return nil
}

// Validate validates auth configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys is required when auth is enabled")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
