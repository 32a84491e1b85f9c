package ingest

import (
	"fmt"

	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// NewSubscriber creates the Subscriber selected by cfg.Type
func NewSubscriber(cfg config.IngestConfig) (Subscriber, error) {
	switch cfg.QueueType() {
	case utils.QueueTypeNATS:
		return NewNATSSubscriber(cfg.URL, cfg.NodeID, cfg.ConsumerGroup)
	case utils.QueueTypeRedis:
		addr := cfg.URL
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisSubscriber(addr, cfg.Password, cfg.RedisDB, cfg.RedisStream, cfg.ConsumerGroup, cfg.NodeID)
	case utils.QueueTypeKafka:
		return NewKafkaSubscriber(cfg.KafkaBrokers, cfg.ConsumerGroup)
	case utils.QueueTypeMemory:
		return NewMemorySubscriber(nil), nil
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}
