package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaWriter is the subset of kafka.Writer used by the sender.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// kafkaSender implements queueSender for a Kafka topic.
type kafkaSender struct {
	topic  string
	writer kafkaWriter
	log    Logger
}

func newKafkaSender(cfg *KafkaQueueConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kafka queue configuration is missing")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &kafkaSender{topic: cfg.Topic, writer: w, log: ensureLogger(log)}, nil
}

// Send writes the event keyed by kind so events of one kind stay ordered.
func (s *kafkaSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.Kind),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(evt.Kind)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.log.ErrorObj("kafka publisher send failed", "publisher_kafka_error", map[string]any{
			"topic": s.topic,
			"error": err.Error(),
		})
		return fmt.Errorf("send message to kafka: %w", err)
	}
	s.log.DebugObj("kafka publisher delivered event", "publisher_kafka_delivery", map[string]any{
		"topic":    s.topic,
		"event_id": evt.ID,
	})
	return nil
}
