package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
)

// logisticArtifact is the exported form of a trained binary logistic
// regression. The feature list pins the input order; loading fails if it
// disagrees with the serving contract.
type logisticArtifact struct {
	ModelType    string    `json:"model_type"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Classes      []int     `json:"classes"`
	Scaler       *struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler,omitempty"`
}

// LogisticClassifier evaluates a logistic regression artifact in process.
type LogisticClassifier struct {
	art logisticArtifact
}

// LoadLogisticClassifier reads and validates an artifact file.
func LoadLogisticClassifier(path string) (*LogisticClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art logisticArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if art.ModelType != "logistic_regression" {
		return nil, fmt.Errorf("unsupported model type %q", art.ModelType)
	}
	if len(art.Features) != len(models.ServingFeatures) {
		return nil, fmt.Errorf("artifact has %d features, want %d", len(art.Features), len(models.ServingFeatures))
	}
	for i, name := range art.Features {
		if name != models.ServingFeatures[i] {
			return nil, fmt.Errorf("feature order mismatch at %d: artifact %q, serving %q",
				i, name, models.ServingFeatures[i])
		}
	}
	if len(art.Coefficients) != len(art.Features) {
		return nil, fmt.Errorf("artifact has %d coefficients for %d features",
			len(art.Coefficients), len(art.Features))
	}
	if len(art.Classes) != 2 || art.Classes[0] != 0 || art.Classes[1] != 1 {
		return nil, fmt.Errorf("unsupported classes %v, want [0 1]", art.Classes)
	}
	if art.Scaler != nil {
		if len(art.Scaler.Mean) != len(art.Features) || len(art.Scaler.Scale) != len(art.Features) {
			return nil, fmt.Errorf("scaler dimensions do not match feature count")
		}
		for i, s := range art.Scaler.Scale {
			if s == 0 {
				return nil, fmt.Errorf("scaler scale is zero at %d", i)
			}
		}
	}

	return &LogisticClassifier{art: art}, nil
}

// Predict returns the class label and both class probabilities.
// proba[0] is P(down), proba[1] is P(up).
func (c *LogisticClassifier) Predict(_ context.Context, features []float64) (int, []float64, error) {
	if len(features) != len(c.art.Coefficients) {
		return 0, nil, fmt.Errorf("got %d features, want %d", len(features), len(c.art.Coefficients))
	}

	z := c.art.Intercept
	for i, x := range features {
		if c.art.Scaler != nil {
			x = (x - c.art.Scaler.Mean[i]) / c.art.Scaler.Scale[i]
		}
		z += c.art.Coefficients[i] * x
	}

	pUp := 1.0 / (1.0 + math.Exp(-z))
	proba := []float64{1 - pUp, pUp}

	label := 0
	if pUp >= 0.5 {
		label = 1
	}
	return label, proba, nil
}

var _ service.DirectionClassifier = (*LogisticClassifier)(nil)
