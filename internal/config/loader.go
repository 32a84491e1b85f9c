package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. DASHBOARD_SERVER_HTTP_PORT
const EnvPrefix = "DASHBOARD"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")              // Current directory
		v.AddConfigPath("./configs")      // Project configs directory
		v.AddConfigPath("./config")       // Alternative config directory
		v.AddConfigPath("/etc/dashboard") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 8081)

	// Dataset defaults
	v.SetDefault("dataset.source", "file")
	v.SetDefault("dataset.path", "./data/cleaned_dataset.csv")
	v.SetDefault("dataset.table", "flotation_records")
	v.SetDefault("dataset.retries", 3)
	v.SetDefault("dataset.timeout", "60s")

	// Ingest defaults
	v.SetDefault("ingest.enabled", false)
	v.SetDefault("ingest.type", "nats")
	v.SetDefault("ingest.url", "nats://localhost:4222")
	v.SetDefault("ingest.subject", "flotation.records")
	v.SetDefault("ingest.consumer_group", "dashboard")
	v.SetDefault("ingest.node_id", "dashboard-1")
	v.SetDefault("ingest.redis_stream", "dashboard")

	// Analytics defaults
	v.SetDefault("analytics.forecast_horizon", 7)
	v.SetDefault("analytics.max_forecast_horizon", 365)
	v.SetDefault("analytics.moving_average_window", 7)
	v.SetDefault("analytics.cadence", "daily")
	v.SetDefault("analytics.correlation_mode", "independent")
	v.SetDefault("analytics.histogram_bins", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 8080,
			GRPCPort: 8081,
		},
		Dataset: DatasetConfig{
			Source:  "file",
			Path:    "./data/cleaned_dataset.csv",
			Table:   "flotation_records",
			Retries: 3,
			Timeout: 60 * time.Second,
		},
		Ingest: IngestConfig{
			Enabled:       false,
			Type:          "nats",
			URL:           "nats://localhost:4222",
			Subject:       "flotation.records",
			ConsumerGroup: "dashboard",
			NodeID:        "dashboard-1",
			RedisStream:   "dashboard",
		},
		Analytics: AnalyticsConfig{
			ForecastHorizon:     7,
			MaxForecastHorizon:  365,
			MovingAverageWindow: 7,
			Cadence:             "daily",
			CorrelationMode:     "independent",
			HistogramBins:       20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
