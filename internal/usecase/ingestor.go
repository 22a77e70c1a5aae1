package usecase

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	applogger "StockCast/pkg/logger"
)

// IngestBackend selects where fetched bars go.
type IngestBackend string

const (
	BackendKafka      IngestBackend = "kafka"
	BackendClickHouse IngestBackend = "clickhouse"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Symbols int
	Bars    int
	Failed  []string
}

// Ingestor pulls historical daily bars from the price provider and routes
// them to the configured backend. A failing symbol is recorded and skipped
// so one bad ticker cannot abort the batch.
type Ingestor struct {
	provider  repository.PriceProvider
	store     repository.BarStore
	publisher repository.BarPublisher
	backend   IngestBackend
	metrics   repository.Metrics
	logger    *applogger.Logger
}

// NewIngestor wires the ingestion use case. Exactly one of store or
// publisher is used depending on backend.
func NewIngestor(
	provider repository.PriceProvider,
	store repository.BarStore,
	publisher repository.BarPublisher,
	backend IngestBackend,
	metrics repository.Metrics,
	logger *applogger.Logger,
) (*Ingestor, error) {
	switch backend {
	case BackendClickHouse:
		if store == nil {
			return nil, fmt.Errorf("clickhouse backend requires a bar store")
		}
	case BackendKafka:
		if publisher == nil {
			return nil, fmt.Errorf("kafka backend requires a publisher")
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	return &Ingestor{
		provider:  provider,
		store:     store,
		publisher: publisher,
		backend:   backend,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Run fetches and routes bars for each symbol in order.
func (in *Ingestor) Run(ctx context.Context, symbols []string, from, to time.Time) (*IngestResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to ingest")
	}

	res := &IngestResult{}
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		bars, err := in.provider.HistoricalDaily(ctx, symbol, from, to)
		if err != nil {
			in.fail(res, symbol, "fetch", err)
			continue
		}
		if len(bars) == 0 {
			if in.logger != nil {
				in.logger.Warn("no bars returned", applogger.String("symbol", symbol))
			}
			continue
		}

		if err := in.route(ctx, bars); err != nil {
			in.fail(res, symbol, "route", err)
			continue
		}

		res.Symbols++
		res.Bars += len(bars)
		if in.metrics != nil {
			in.metrics.RecordBarsIngested(string(in.backend), symbol, len(bars))
		}
		if in.logger != nil {
			in.logger.Info("symbol ingested",
				applogger.String("symbol", symbol),
				applogger.Int("bars", len(bars)),
				applogger.String("backend", string(in.backend)),
			)
		}
	}

	return res, nil
}

func (in *Ingestor) route(ctx context.Context, bars []*models.PriceBar) error {
	switch in.backend {
	case BackendKafka:
		return in.publisher.PublishBatch(ctx, bars)
	default:
		return in.store.StoreBatch(ctx, bars)
	}
}

func (in *Ingestor) fail(res *IngestResult, symbol, stage string, err error) {
	res.Failed = append(res.Failed, symbol)
	if in.metrics != nil {
		in.metrics.RecordError("ingest_" + stage)
	}
	if in.logger != nil {
		in.logger.Error("symbol ingestion failed",
			applogger.String("symbol", symbol),
			applogger.String("stage", stage),
			applogger.Error(err),
		)
	}
}
