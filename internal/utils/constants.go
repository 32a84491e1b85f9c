package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout bounds reading a request and writing its response
	DefaultRequestTimeout = 30 * time.Second

	// ReloadTimeout bounds a dataset reload from its configured source
	ReloadTimeout = 2 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the servers
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Dataset Constants
// =============================================================================

const (
	// DefaultPageSize is the table page size when none is requested
	DefaultPageSize = 50
)

// =============================================================================
// Source and Queue Types
// =============================================================================

// SourceType represents where the dataset is loaded from
type SourceType string

const (
	// SourceTypeFile loads a local CSV file (default)
	SourceTypeFile SourceType = "file"

	// SourceTypeHTTP downloads a CSV file over HTTP
	SourceTypeHTTP SourceType = "http"

	// SourceTypePostgres reads a PostgreSQL table
	SourceTypePostgres SourceType = "postgres"
)

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue (default)
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)
