package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

const memoryBufferSize = 1000

type memoryMessage struct {
	subject string
	data    []byte
}

type memorySubscription struct {
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	ch      chan memoryMessage
}

// MemoryBroker routes in-process messages to memory subscribers
type MemoryBroker struct {
	subscribers map[string][]*memorySubscription
	mu          sync.RWMutex
	logger      *logging.Logger
}

var (
	defaultBroker     *MemoryBroker
	defaultBrokerOnce sync.Once
)

// NewMemoryBroker creates an empty broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subscribers: make(map[string][]*memorySubscription),
		logger:      logging.Global().With("component", "ingest.memory"),
	}
}

// DefaultMemoryBroker returns the process-wide broker used by the factory
func DefaultMemoryBroker() *MemoryBroker {
	defaultBrokerOnce.Do(func() {
		defaultBroker = NewMemoryBroker()
	})
	return defaultBroker
}

// Publish hands data to every subscriber of subject and returns how many
// accepted it. A subscriber with a full buffer drops the message.
func (b *MemoryBroker) Publish(subject string, data []byte) int {
	b.mu.RLock()
	subs := append([]*memorySubscription(nil), b.subscribers[subject]...)
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case sub.ch <- memoryMessage{subject: subject, data: data}:
			delivered++
		default:
			b.logger.Warn("Subscriber buffer full, dropping message", "subject", subject)
		}
	}
	return delivered
}

func (b *MemoryBroker) register(subject string, sub *memorySubscription) {
	b.mu.Lock()
	b.subscribers[subject] = append(b.subscribers[subject], sub)
	b.mu.Unlock()
}

func (b *MemoryBroker) unregister(subject string, sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[subject]
	for i, s := range subs {
		if s == sub {
			b.subscribers[subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[subject]) == 0 {
		delete(b.subscribers, subject)
	}
}

// MemorySubscriber implements Subscriber over a MemoryBroker
type MemorySubscriber struct {
	broker        *MemoryBroker
	subscriptions map[string]*memorySubscription
	mu            sync.Mutex
	logger        *logging.Logger
}

// NewMemorySubscriber creates a subscriber on broker, or on the default
// broker when broker is nil
func NewMemorySubscriber(broker *MemoryBroker) *MemorySubscriber {
	if broker == nil {
		broker = DefaultMemoryBroker()
	}
	return &MemorySubscriber{
		broker:        broker,
		subscriptions: make(map[string]*memorySubscription),
		logger:        logging.Global().With("component", "ingest.memory"),
	}
}

// Subscribe implements Subscriber
func (s *MemorySubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{
		handler: handler,
		ctx:     subCtx,
		cancel:  cancel,
		ch:      make(chan memoryMessage, memoryBufferSize),
	}
	s.subscriptions[subject] = sub
	s.broker.register(subject, sub)

	go consumeMemory(sub, s.logger)

	s.logger.Info("Subscribed to in-memory subject", "subject", subject)
	return nil
}

func consumeMemory(sub *memorySubscription, logger *logging.Logger) {
	for {
		select {
		case <-sub.ctx.Done():
			return
		case msg := <-sub.ch:
			if err := sub.handler(sub.ctx, msg.subject, msg.data); err != nil {
				logger.Error("Failed to handle message", "subject", msg.subject, "error", err)
			}
		}
	}
}

// Unsubscribe implements Subscriber
func (s *MemorySubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	sub.cancel()
	s.broker.unregister(subject, sub)
	delete(s.subscriptions, subject)

	s.logger.Info("Unsubscribed from in-memory subject", "subject", subject)
	return nil
}

// Close implements Subscriber
func (s *MemorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject, sub := range s.subscriptions {
		sub.cancel()
		s.broker.unregister(subject, sub)
	}
	s.subscriptions = make(map[string]*memorySubscription)
	return nil
}
