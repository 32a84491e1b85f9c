package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// NATSSubscriber implements Subscriber on NATS JetStream work queues
type NATSSubscriber struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	nodeID        string
	consumerGroup string
	subscriptions map[string]*nats.Subscription
	mu            sync.Mutex
	logger        *logging.Logger
}

// NewNATSSubscriber connects to url and opens a JetStream context
func NewNATSSubscriber(url, nodeID, consumerGroup string) (*NATSSubscriber, error) {
	logger := logging.Global().With("component", "ingest.nats")
	conn, err := nats.Connect(url,
		nats.Name("dashboard-ingest-"+nodeID),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSSubscriber{
		conn:          conn,
		js:            js,
		nodeID:        nodeID,
		consumerGroup: consumerGroup,
		subscriptions: make(map[string]*nats.Subscription),
		logger:        logger,
	}, nil
}

// Subscribe implements Subscriber. Messages are acked after handler
// succeeds and redelivered up to three times otherwise.
func (s *NATSSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := s.ensureStream(subject); err != nil {
		return err
	}

	durable := durableName(s.consumerGroup, s.nodeID, subject)
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			s.logger.Error("Failed to handle message",
				"subject", msg.Subject,
				"error", err,
				"data_preview", string(msg.Data[:min(100, len(msg.Data))]))
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	s.subscriptions[subject] = sub
	s.logger.Info("Subscribed to subject", "subject", subject, "durable", durable)
	return nil
}

// ensureStream creates a work-queue stream for subject unless one already
// captures it
func (s *NATSSubscriber) ensureStream(subject string) error {
	if name, err := s.js.StreamNameBySubject(subject); err == nil && name != "" {
		return nil
	}

	name := streamName(subject)
	if _, err := s.js.StreamInfo(name); err == nil {
		return nil
	}

	_, err := s.js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
		Replicas:  1,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		s.logger.Error("Failed to create stream", "stream", name, "error", err)
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}

// Unsubscribe implements Subscriber
func (s *NATSSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", subject, err)
	}

	delete(s.subscriptions, subject)
	s.logger.Info("Unsubscribed from subject", "subject", subject)
	return nil
}

// Close implements Subscriber. The durable consumers are kept on the server
// so a restart resumes where it stopped.
func (s *NATSSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject, sub := range s.subscriptions {
		if err := sub.Drain(); err != nil {
			s.logger.Warn("Failed to drain subscription", "subject", subject, "error", err)
		}
	}
	s.subscriptions = make(map[string]*nats.Subscription)

	s.conn.Close()
	s.logger.Info("NATS subscriber closed")
	return nil
}

// streamName maps a subject to a valid stream name (no dots or dashes)
func streamName(subject string) string {
	return "RECORDS_" + sanitize(subject)
}

// durableName is unique per group, node and subject
func durableName(group, nodeID, subject string) string {
	return fmt.Sprintf("%s-%s-%s", group, nodeID, sanitize(subject))
}

var subjectReplacer = strings.NewReplacer(".", "_", "-", "_", "*", "all", ">", "rest")

func sanitize(subject string) string {
	return subjectReplacer.Replace(subject)
}
