// Package ingest feeds live flotation records from a message queue into the
// dataset store.
package ingest

import (
	"context"
)

// MessageHandler processes one message payload received on subject
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscriber delivers queue messages to a handler
type Subscriber interface {
	// Subscribe starts delivering messages of subject to handler
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Unsubscribe stops delivery for subject
	Unsubscribe(subject string) error

	// Close stops every subscription and releases the connection
	Close() error
}
