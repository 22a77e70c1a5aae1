package repository

import (
	"context"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/pkg/kafka"
)

// KafkaBarPublisher publishes daily bars to a Kafka topic, keyed by
// symbol so each symbol stays on a single partition.
type KafkaBarPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaBarPublisher creates a publisher for the given topic.
func NewKafkaBarPublisher(producer *kafka.Producer, topic string) *KafkaBarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

// Publish sends a single bar.
func (p *KafkaBarPublisher) Publish(ctx context.Context, bar *models.PriceBar) error {
	return p.producer.Publish(ctx, p.topic, []byte(bar.Symbol), bar)
}

// PublishBatch sends a batch of bars in one write.
func (p *KafkaBarPublisher) PublishBatch(ctx context.Context, bars []*models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(bars))
	for _, b := range bars {
		msgs = append(msgs, kafka.Message{Key: []byte(b.Symbol), Value: b})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// Close closes the underlying producer.
func (p *KafkaBarPublisher) Close() error {
	return p.producer.Close()
}

var _ repository.BarPublisher = (*KafkaBarPublisher)(nil)
