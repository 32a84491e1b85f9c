package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// KafkaSubscriber implements Subscriber with one consumer-group reader per topic
type KafkaSubscriber struct {
	brokers       []string
	consumerGroup string
	readers       map[string]*kafka.Reader
	cancels       map[string]context.CancelFunc
	mu            sync.Mutex
	logger        *logging.Logger
}

// NewKafkaSubscriber validates the broker list; readers connect lazily
func NewKafkaSubscriber(brokers []string, consumerGroup string) (*KafkaSubscriber, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if consumerGroup == "" {
		return nil, errors.New("kafka consumer group is required")
	}

	return &KafkaSubscriber{
		brokers:       brokers,
		consumerGroup: consumerGroup,
		readers:       make(map[string]*kafka.Reader),
		cancels:       make(map[string]context.CancelFunc),
		logger:        logging.Global().With("component", "ingest.kafka"),
	}, nil
}

// Subscribe implements Subscriber; subject is used as the topic name
func (s *KafkaSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.readers[subject]; exists {
		return fmt.Errorf("already subscribed to topic: %s", subject)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           s.brokers,
		GroupID:           s.consumerGroup,
		Topic:             subject,
		MinBytes:          1,
		MaxBytes:          10e6,
		MaxWait:           time.Second,
		CommitInterval:    time.Second,
		StartOffset:       kafka.FirstOffset,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(msg, args...))
		}),
	})

	subCtx, cancel := context.WithCancel(ctx)
	s.readers[subject] = reader
	s.cancels[subject] = cancel

	go s.consume(subCtx, reader, subject, handler)

	s.logger.Info("Subscribed to Kafka topic", "topic", subject, "group", s.consumerGroup)
	return nil
}

func (s *KafkaSubscriber) consume(ctx context.Context, reader *kafka.Reader, topic string, handler MessageHandler) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error("Failed to fetch message", "topic", topic, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := handler(ctx, topic, msg.Value); err != nil {
			// Left uncommitted so the group redelivers it
			s.logger.Error("Failed to handle message", "topic", topic, "offset", msg.Offset, "error", err)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			s.logger.Error("Failed to commit message", "topic", topic, "offset", msg.Offset, "error", err)
		}
	}
}

// Unsubscribe implements Subscriber
func (s *KafkaSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, exists := s.cancels[subject]
	if !exists {
		return fmt.Errorf("not subscribed to topic: %s", subject)
	}
	cancel()
	delete(s.cancels, subject)

	if reader, ok := s.readers[subject]; ok {
		if err := reader.Close(); err != nil {
			s.logger.Warn("Failed to close reader", "topic", subject, "error", err)
		}
		delete(s.readers, subject)
	}

	s.logger.Info("Unsubscribed from Kafka topic", "topic", subject)
	return nil
}

// Close implements Subscriber
func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = make(map[string]context.CancelFunc)

	var lastErr error
	for topic, reader := range s.readers {
		if err := reader.Close(); err != nil {
			s.logger.Warn("Failed to close reader", "topic", topic, "error", err)
			lastErr = err
		}
	}
	s.readers = make(map[string]*kafka.Reader)

	return lastErr
}
