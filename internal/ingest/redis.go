package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// RedisPayloadField is the stream entry field that carries the record JSON
const RedisPayloadField = "data"

// RedisSubscriber implements Subscriber on Redis Streams consumer groups
type RedisSubscriber struct {
	client        *redis.Client
	streamPrefix  string
	consumerGroup string
	consumerID    string
	subscriptions map[string]context.CancelFunc
	mu            sync.Mutex
	logger        *logging.Logger
}

// NewRedisSubscriber connects and pings the server
func NewRedisSubscriber(addr, password string, db int, streamPrefix, consumerGroup, consumerID string) (*RedisSubscriber, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
		PoolSize:    4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if streamPrefix == "" {
		streamPrefix = "dashboard"
	}

	return &RedisSubscriber{
		client:        client,
		streamPrefix:  streamPrefix,
		consumerGroup: consumerGroup,
		consumerID:    consumerID,
		subscriptions: make(map[string]context.CancelFunc),
		logger:        logging.Global().With("component", "ingest.redis"),
	}, nil
}

// Subscribe implements Subscriber. The stream is {prefix}:{subject}.
func (s *RedisSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := redisStreamName(s.streamPrefix, subject)
	if _, exists := s.subscriptions[stream]; exists {
		return fmt.Errorf("already subscribed to stream: %s", stream)
	}

	err := s.client.XGroupCreateMkStream(ctx, stream, s.consumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.subscriptions[stream] = cancel

	go s.consume(subCtx, stream, subject, handler)

	s.logger.Info("Subscribed to Redis stream", "stream", stream, "group", s.consumerGroup, "consumer", s.consumerID)
	return nil
}

func (s *RedisSubscriber) consume(ctx context.Context, stream, subject string, handler MessageHandler) {
	for ctx.Err() == nil {
		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.consumerGroup,
			Consumer: s.consumerID,
			Streams:  []string{stream, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("Failed to read from stream", "stream", stream, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, st := range streams {
			for _, message := range st.Messages {
				data, ok := message.Values[RedisPayloadField].(string)
				if !ok {
					s.logger.Warn("Stream entry without payload", "stream", stream, "id", message.ID)
					s.client.XAck(ctx, stream, s.consumerGroup, message.ID)
					continue
				}
				if err := handler(ctx, subject, []byte(data)); err != nil {
					// Stays pending for a later claim
					s.logger.Error("Failed to handle message", "stream", stream, "id", message.ID, "error", err)
					continue
				}
				if err := s.client.XAck(ctx, stream, s.consumerGroup, message.ID).Err(); err != nil {
					s.logger.Error("Failed to ACK message", "stream", stream, "id", message.ID, "error", err)
				}
			}
		}
	}
}

// Unsubscribe implements Subscriber
func (s *RedisSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := redisStreamName(s.streamPrefix, subject)
	cancel, exists := s.subscriptions[stream]
	if !exists {
		return fmt.Errorf("not subscribed to stream: %s", stream)
	}
	cancel()
	delete(s.subscriptions, stream)

	s.logger.Info("Unsubscribed from Redis stream", "stream", stream)
	return nil
}

// Close implements Subscriber
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cancel := range s.subscriptions {
		cancel()
	}
	s.subscriptions = make(map[string]context.CancelFunc)

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	return nil
}

func redisStreamName(prefix, subject string) string {
	return prefix + ":" + subject
}
