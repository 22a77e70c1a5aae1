package usecase

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/features"
	applogger "StockCast/pkg/logger"
)

// FeatureBuilder reads raw bars from the bar store, derives the feature
// table, and hands it to a writer. The writer is injected so the use case
// stays independent of the on-disk format.
type FeatureBuilder struct {
	bars       repository.BarStore
	write      func(rows []models.FeatureRow) error
	withLabels bool
	metrics    repository.Metrics
	logger     *applogger.Logger
}

// BuildResult summarizes one feature build.
type BuildResult struct {
	Symbols int
	Rows    int
}

// NewFeatureBuilder wires the feature build use case. withLabels selects
// the training variant, which spends each symbol's last bar on the
// look-ahead label.
func NewFeatureBuilder(
	bars repository.BarStore,
	write func(rows []models.FeatureRow) error,
	withLabels bool,
	metrics repository.Metrics,
	logger *applogger.Logger,
) *FeatureBuilder {
	return &FeatureBuilder{
		bars:       bars,
		write:      write,
		withLabels: withLabels,
		metrics:    metrics,
		logger:     logger,
	}
}

// Build derives features for every symbol in the bar store and writes the
// combined table.
func (b *FeatureBuilder) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()

	symbols, err := b.bars.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("bar store is empty")
	}

	var all []*models.PriceBar
	for _, symbol := range symbols {
		bars, err := b.bars.Query(ctx, symbol, time.Time{}, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
		}
		all = append(all, bars...)
	}

	rows := features.DeriveAll(all, b.withLabels)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no symbol has enough history to derive features")
	}

	if err := b.write(rows); err != nil {
		return nil, fmt.Errorf("write feature table: %w", err)
	}

	derived := make(map[string]struct{})
	for i := range rows {
		derived[rows[i].Symbol] = struct{}{}
	}

	if b.metrics != nil {
		b.metrics.RecordLatency("feature_build", time.Since(start).Seconds())
	}
	if b.logger != nil {
		b.logger.Info("feature table built",
			applogger.Int("symbols", len(derived)),
			applogger.Int("rows", len(rows)),
			applogger.Bool("labels", b.withLabels),
		)
	}
	return &BuildResult{Symbols: len(derived), Rows: len(rows)}, nil
}
