package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	applogger "StockCast/pkg/logger"
)

// BarConsumer drains ingested bars from the Kafka topic into the bar
// store. It implements kafka.MessageHandler.
type BarConsumer struct {
	topic   string
	store   repository.BarStore
	metrics repository.Metrics
	logger  *applogger.Logger
}

// NewBarConsumer creates a handler for the given topic.
func NewBarConsumer(topic string, store repository.BarStore, metrics repository.Metrics, logger *applogger.Logger) *BarConsumer {
	return &BarConsumer{topic: topic, store: store, metrics: metrics, logger: logger}
}

// Topic returns the subscribed topic.
func (c *BarConsumer) Topic() string { return c.topic }

// Handle decodes one bar and stores it. Decode failures are permanent and
// reported as errors so the consumer can dead-letter them.
func (c *BarConsumer) Handle(ctx context.Context, data []byte) error {
	var bar models.PriceBar
	if err := json.Unmarshal(data, &bar); err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("bar_decode")
		}
		return fmt.Errorf("decode bar: %w", err)
	}
	if bar.Symbol == "" || bar.Date.IsZero() {
		if c.metrics != nil {
			c.metrics.RecordError("bar_invalid")
		}
		return fmt.Errorf("bar missing symbol or date")
	}

	if err := c.store.Store(ctx, &bar); err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("bar_store")
		}
		return fmt.Errorf("store bar %s: %w", bar.Symbol, err)
	}

	if c.metrics != nil {
		c.metrics.RecordBarsIngested("kafka", bar.Symbol, 1)
	}
	if c.logger != nil {
		c.logger.Debug("bar consumed",
			applogger.String("symbol", bar.Symbol),
		)
	}
	return nil
}
