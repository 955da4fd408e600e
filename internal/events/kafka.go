package events

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Producer is the subset of *kafka.Writer the sink needs.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards events to a Kafka topic keyed by the event key.
type KafkaSink struct {
	producer Producer
	timeout  time.Duration
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

func NewKafkaSink(producer Producer) *KafkaSink {
	return &KafkaSink{producer: producer, timeout: 5 * time.Second}
}

// Handle is a Bus subscriber.
func (s *KafkaSink) Handle(e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("encode event", zap.String("namespace", "events"), zap.String("topic", e.Topic), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err = s.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_topic", Value: []byte(e.Topic)},
		},
	})
	if err != nil {
		zap.L().Warn("publish event to kafka failed",
			zap.String("namespace", "events"),
			zap.String("topic", e.Topic),
			zap.String("key", e.Key),
			zap.Error(err))
	}
}

// Attach subscribes the sink to every domain topic.
func (s *KafkaSink) Attach(b *Bus) error {
	for _, topic := range []string{TopicOrderPlaced, TopicOrderResponded, TopicStockLow} {
		if err := b.Subscribe(topic, s.Handle); err != nil {
			return err
		}
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
