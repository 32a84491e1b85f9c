package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// Publisher sends record messages to a queue
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// PublishRecords sends records as JSON arrays of at most batchSize records
// and returns how many records were published
func PublishRecords(ctx context.Context, pub Publisher, subject string, records []analytics.Record, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = len(records)
	}

	published := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		data, err := json.Marshal(records[start:end])
		if err != nil {
			return published, fmt.Errorf("marshal batch: %w", err)
		}
		if err := pub.Publish(ctx, subject, data); err != nil {
			return published, err
		}
		published += end - start
	}
	return published, nil
}

// NewPublisher creates the Publisher selected by cfg.Type
func NewPublisher(cfg config.IngestConfig) (Publisher, error) {
	switch cfg.QueueType() {
	case utils.QueueTypeNATS:
		return NewNATSPublisher(cfg.URL)
	case utils.QueueTypeRedis:
		addr := cfg.URL
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisPublisher(addr, cfg.Password, cfg.RedisDB, cfg.RedisStream)
	case utils.QueueTypeKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers)
	case utils.QueueTypeMemory:
		return &MemoryPublisher{Broker: DefaultMemoryBroker()}, nil
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}

// MemoryPublisher publishes to a MemoryBroker
type MemoryPublisher struct {
	Broker *MemoryBroker
}

// Publish implements Publisher
func (p *MemoryPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.Broker.Publish(subject, data)
	return nil
}

// Close implements Publisher
func (p *MemoryPublisher) Close() error { return nil }

// NATSPublisher publishes through JetStream and waits for the stream ack
type NATSPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewNATSPublisher connects to url
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("dashboard-publisher"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &NATSPublisher{conn: conn, js: js}, nil
}

// Publish implements Publisher
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Close implements Publisher
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// RedisPublisher appends entries to {prefix}:{subject} streams
type RedisPublisher struct {
	client       *redis.Client
	streamPrefix string
}

// NewRedisPublisher connects and pings the server
func NewRedisPublisher(addr, password string, db int, streamPrefix string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
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
	return &RedisPublisher{client: client, streamPrefix: streamPrefix}, nil
}

// Publish implements Publisher
func (p *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	stream := redisStreamName(p.streamPrefix, subject)
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{RedisPayloadField: data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", stream, err)
	}
	return nil
}

// Close implements Publisher
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// KafkaPublisher keeps one writer per topic
type KafkaPublisher struct {
	brokers []string
	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

// NewKafkaPublisher validates the broker list; writers connect lazily
func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	return &KafkaPublisher{brokers: brokers, writers: make(map[string]*kafka.Writer)}, nil
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	msg := kafka.Message{Value: data, Time: time.Now()}
	if err := p.writer(subject).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// Close implements Publisher
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return lastErr
}
