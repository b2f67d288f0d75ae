// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
)

// Event is a keyed domain notification. Key selects the Kafka partition.
type Event struct {
	Type    string    `json:"type"`
	Key     string    `json:"key"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Start(lc *lifecycle.Coordinator) error
}

// New returns a Kafka publisher when brokers are configured, otherwise a
// publisher that only logs.
func New(cfg *Config, logger *slog.Logger) Publisher {
	logger = logger.With("system", "events")
	if !cfg.Enabled() {
		return &noop{logger: logger}
	}
	return &kafka{
		brokers:  cfg.Brokers,
		topic:    cfg.Topic,
		clientID: cfg.ClientID,
		logger:   logger,
	}
}

type kafka struct {
	brokers  []string
	topic    string
	clientID string
	producer sarama.SyncProducer
	logger   *slog.Logger
}

func newSaramaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	return cfg
}

func (k *kafka) Start(lc *lifecycle.Coordinator) error {
	k.logger.Info("starting event producer", "brokers", k.brokers, "topic", k.topic)

	producer, err := sarama.NewSyncProducer(k.brokers, newSaramaConfig(k.clientID))
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	k.producer = producer

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := k.producer.Close(); err != nil {
			k.logger.Error("event producer close failed", "error", err)
			return
		}
		k.logger.Info("event producer closed")
	})

	return nil
}

func (k *kafka) Publish(ctx context.Context, e Event) error {
	if k.producer == nil {
		return fmt.Errorf("publish %s: producer not started", e.Type)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := encode(k.topic, e)
	if err != nil {
		return err
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	k.logger.Debug("event published", "type", e.Type, "key", e.Key, "partition", partition, "offset", offset)
	return nil
}

func encode(topic string, e Event) (*sarama.ProducerMessage, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(e.Key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(e.Type)},
		},
	}, nil
}

type noop struct {
	logger *slog.Logger
}

func (n *noop) Start(lc *lifecycle.Coordinator) error {
	n.logger.Info("event publishing disabled, no brokers configured")
	return nil
}

func (n *noop) Publish(ctx context.Context, e Event) error {
	n.logger.Debug("event dropped", "type", e.Type, "key", e.Key)
	return nil
}
