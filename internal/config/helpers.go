package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// EnsureDirectories ensures the directory of a file dataset exists
func (c *Config) EnsureDirectories() error {
	if c.Dataset.SourceType() != utils.SourceTypeFile {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Dataset.Path), 0755)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// GetGRPCAddress returns the gRPC server address
func (c *Config) GetGRPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.GRPCPort))
}

// GRPCEnabled reports whether the gRPC health server should be started
func (c *Config) GRPCEnabled() bool {
	return c.Server.GRPCPort > 0
}

// SourceType returns the normalized dataset source type, file by default
func (c *DatasetConfig) SourceType() utils.SourceType {
	s := utils.SourceType(strings.ToLower(strings.TrimSpace(c.Source)))
	if s == "" {
		return utils.SourceTypeFile
	}
	return s
}

// QueueType returns the normalized ingest queue type, nats by default
func (c *IngestConfig) QueueType() utils.QueueType {
	q := utils.QueueType(strings.ToLower(strings.TrimSpace(c.Type)))
	if q == "" {
		return utils.QueueTypeNATS
	}
	return q
}
