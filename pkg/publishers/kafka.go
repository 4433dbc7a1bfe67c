package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// kafkaProducer defines the minimal subset of the sarama producer used by
// the Kafka sender.
type kafkaProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
}

// kafkaSender implements queueSender for a Kafka topic.
type kafkaSender struct {
	topic    string
	producer kafkaProducer
	log      Logger
}

// newKafkaSender builds a synchronous Kafka producer.
func newKafkaSender(cfg *KafkaQueueConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kafka queue configuration is missing")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &kafkaSender{
		topic:    cfg.Topic,
		producer: producer,
		log:      ensureLogger(log),
	}, nil
}

// Send publishes the alert event to the configured Kafka topic. Events are
// keyed by subscription so alerts for one subscription stay ordered within
// a partition.
func (s *kafkaSender) Send(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(evt.SubscriptionID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		s.log.ErrorObj("kafka publisher send failed", "publisher_kafka_error", map[string]any{
			"subscription_id": evt.SubscriptionID,
			"error":           err.Error(),
		})
		return fmt.Errorf("send message to kafka: %w", err)
	}

	s.log.DebugObj("kafka publisher delivered event", "publisher_kafka_delivery", map[string]any{
		"subscription_id": evt.SubscriptionID,
		"partition":       partition,
		"offset":          offset,
	})
	return nil
}
