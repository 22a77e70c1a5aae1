package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/domain/service"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const maxSymbolLen = 12

// Predictor serves next-day direction predictions from the derived
// feature table and a trained classifier. The classifier may be nil when
// the artifact failed to load; prediction then degrades to
// ErrClassifierUnavailable while symbol listing keeps working.
type Predictor struct {
	features   repository.FeatureStore
	classifier service.DirectionClassifier
	metrics    repository.Metrics
	logger     *applogger.Logger
}

// NewPredictor wires the serving use case.
func NewPredictor(
	features repository.FeatureStore,
	classifier service.DirectionClassifier,
	metrics repository.Metrics,
	logger *applogger.Logger,
) *Predictor {
	return &Predictor{
		features:   features,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Predict returns the direction call for a symbol's latest feature row.
// Symbols are case-insensitive; the canonical form is upper case.
func (p *Predictor) Predict(ctx context.Context, symbol string) (*models.PredictionResult, error) {
	start := time.Now()

	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if p.classifier == nil {
		if p.metrics != nil {
			p.metrics.RecordError("classifier_unavailable")
		}
		return nil, models.ErrClassifierUnavailable
	}

	row, err := p.features.LatestRow(symbol)
	if err != nil {
		return nil, err
	}

	label, proba, err := p.classifier.Predict(ctx, row.Vector())
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordError("classifier_predict")
		}
		return nil, fmt.Errorf("classify %s: %w", symbol, err)
	}
	if label < 0 || label >= len(proba) {
		return nil, fmt.Errorf("classifier returned label %d outside probability range", label)
	}

	direction := models.DirectionDown
	if label == 1 {
		direction = models.DirectionUp
	}

	result := &models.PredictionResult{
		Symbol:        symbol,
		Prediction:    direction,
		Confidence:    proba[label],
		PredictedDate: util.NextTradingDay(row.Date),
	}

	if p.metrics != nil {
		p.metrics.RecordPrediction(symbol, direction)
		p.metrics.RecordLatency("predict", time.Since(start).Seconds())
	}
	if p.logger != nil {
		p.logger.Info("prediction served",
			applogger.String("symbol", symbol),
			applogger.String("direction", direction),
			applogger.Float64("confidence", result.Confidence),
		)
	}
	return result, nil
}

// Symbols returns the predictable symbols in ascending order.
func (p *Predictor) Symbols(ctx context.Context) ([]string, error) {
	_ = ctx
	return p.features.Symbols()
}

// Health summarizes serving readiness for the health endpoint.
func (p *Predictor) Health(ctx context.Context) (status, message string) {
	_ = ctx
	if err := p.features.Health(); err != nil {
		return "error", "feature table unavailable"
	}
	if p.classifier == nil {
		return "degraded", "model not loaded, predictions unavailable"
	}
	return "healthy", "service is ready"
}

func normalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || len(s) > maxSymbolLen {
		return "", models.ErrInvalidSymbol
	}
	for _, r := range s {
		valid := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-'
		if !valid {
			return "", models.ErrInvalidSymbol
		}
	}
	return s, nil
}
