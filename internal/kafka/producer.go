package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"github.com/pet-progression/internal/config"
	"github.com/pet-progression/internal/events"
)

// RewardKinds are the events forwarded to the reward-issuance topic.
var RewardKinds = []events.Kind{events.KindAchievementUnlocked, events.KindMissionCompleted}

// RewardEvent is the wire format of a forwarded event
type RewardEvent struct {
	Kind      events.Kind  `json:"kind"`
	PlayerID  string       `json:"player_id"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   events.Event `json:"payload"`
}

// RewardProducer publishes reward events to Kafka without blocking the bus
type RewardProducer struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *slog.Logger
	wg       sync.WaitGroup

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewRewardProducer connects an async producer to the configured brokers
func NewRewardProducer(cfg *config.KafkaConfig, logger *slog.Logger) (*RewardProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Retry.Max = cfg.RetryAttempts
	saramaConfig.Producer.Retry.Backoff = cfg.RetryDelay
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating reward producer: %w", err)
	}
	return newRewardProducer(producer, cfg.EventTopic, logger), nil
}

func newRewardProducer(producer sarama.AsyncProducer, topic string, logger *slog.Logger) *RewardProducer {
	p := &RewardProducer{
		producer: producer,
		topic:    topic,
		logger:   logger.With("component", "reward_producer"),
	}

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		for range producer.Successes() {
			p.sent.Add(1)
		}
	}()
	go func() {
		defer p.wg.Done()
		for err := range producer.Errors() {
			p.failed.Add(1)
			p.logger.Error("failed to publish reward event", "error", err)
		}
	}()
	return p
}

// Listener returns a bus listener forwarding events to the reward topic.
// Subscribe it with RewardKinds.
func (p *RewardProducer) Listener() events.Listener {
	return func(e events.Event) {
		data, err := json.Marshal(RewardEvent{
			Kind:      e.Kind(),
			PlayerID:  e.Player(),
			Timestamp: e.At(),
			Payload:   e,
		})
		if err != nil {
			p.logger.Error("failed to marshal reward event", "kind", e.Kind(), "error", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(e.Player()),
			Value: sarama.ByteEncoder(data),
		}
		select {
		case p.producer.Input() <- msg:
		default:
			p.dropped.Add(1)
			p.logger.Warn("producer input full, dropping reward event", "kind", e.Kind(), "player_id", e.Player())
		}
	}
}

// Stats returns sent, failed and dropped counts
func (p *RewardProducer) Stats() (sent, failed, dropped int64) {
	return p.sent.Load(), p.failed.Load(), p.dropped.Load()
}

// Close flushes pending messages and stops the producer
func (p *RewardProducer) Close() {
	p.producer.AsyncClose()
	p.wg.Wait()
}
