package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// BarStore is the append-only raw price store. Bars are written during
// ingestion and read back per symbol in ascending date order for feature
// derivation.
type BarStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.PriceBar) error
	StoreBatch(ctx context.Context, bars []*models.PriceBar) error
	Query(ctx context.Context, symbol string, from, to time.Time) ([]*models.PriceBar, error)
	Symbols(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// BarPublisher publishes ingested bars to a message broker backend.
type BarPublisher interface {
	Publish(ctx context.Context, b *models.PriceBar) error
	PublishBatch(ctx context.Context, bars []*models.PriceBar) error
	Close() error
}

// FeatureStore provides read-only access to the derived feature table.
// Implementations are loaded once at startup and treated as immutable by
// the serving path; Reload is an explicit administrative operation.
type FeatureStore interface {
	RowsBySymbol(symbol string) ([]models.FeatureRow, error)
	LatestRow(symbol string) (*models.FeatureRow, error)
	Symbols() ([]string, error)
	Health() error
}

// PriceProvider fetches historical daily OHLCV rows for one symbol.
// Implementations are rate limited; a per-symbol failure must not abort
// the overall ingestion batch.
type PriceProvider interface {
	HistoricalDaily(ctx context.Context, symbol string, from, to time.Time) ([]*models.PriceBar, error)
}

// Metrics records operational counters for ingestion and serving.
type Metrics interface {
	RecordPrediction(symbol, direction string)
	RecordBarsIngested(backend, symbol string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
