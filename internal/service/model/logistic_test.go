package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

const validArtifact = `{
	"model_type": "logistic_regression",
	"features": ["daily_return", "ma_5", "volatility_10", "volume_spike", "day_of_week", "lag_close_1", "hl_range"],
	"coefficients": [1.0, 0, 0, 0, 0, 0, 0],
	"intercept": 0.0,
	"classes": [0, 1]
}`

func TestLoadLogisticClassifier(t *testing.T) {
	clf, err := LoadLogisticClassifier(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if clf == nil {
		t.Fatalf("nil classifier")
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	cases := map[string]string{
		"wrong type": `{"model_type":"random_forest","features":["daily_return","ma_5","volatility_10","volume_spike","day_of_week","lag_close_1","hl_range"],"coefficients":[0,0,0,0,0,0,0],"intercept":0,"classes":[0,1]}`,
		"feature order": `{"model_type":"logistic_regression","features":["ma_5","daily_return","volatility_10","volume_spike","day_of_week","lag_close_1","hl_range"],"coefficients":[0,0,0,0,0,0,0],"intercept":0,"classes":[0,1]}`,
		"coef mismatch": `{"model_type":"logistic_regression","features":["daily_return","ma_5","volatility_10","volume_spike","day_of_week","lag_close_1","hl_range"],"coefficients":[0,0],"intercept":0,"classes":[0,1]}`,
		"bad classes":   `{"model_type":"logistic_regression","features":["daily_return","ma_5","volatility_10","volume_spike","day_of_week","lag_close_1","hl_range"],"coefficients":[0,0,0,0,0,0,0],"intercept":0,"classes":[1,2]}`,
		"not json":      `{{`,
	}

	for name, content := range cases {
		if _, err := LoadLogisticClassifier(writeArtifact(t, content)); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestPredictSigmoid(t *testing.T) {
	clf, err := LoadLogisticClassifier(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Only the daily_return coefficient is non-zero (1.0), intercept 0.
	// z equals the first feature value.
	features := []float64{2.0, 0, 0, 0, 0, 0, 0}
	label, proba, err := clf.Predict(context.Background(), features)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if label != 1 {
		t.Fatalf("label = %d, want 1", label)
	}

	wantUp := 1.0 / (1.0 + math.Exp(-2.0))
	if math.Abs(proba[1]-wantUp) > 1e-12 {
		t.Fatalf("proba[1] = %v, want %v", proba[1], wantUp)
	}
	if math.Abs(proba[0]+proba[1]-1.0) > 1e-12 {
		t.Fatalf("probabilities do not sum to 1: %v", proba)
	}

	// Negative z flips the label.
	label, proba, err = clf.Predict(context.Background(), []float64{-2.0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if label != 0 {
		t.Fatalf("label = %d, want 0", label)
	}
	if proba[0] <= 0.5 {
		t.Fatalf("proba[0] = %v, want > 0.5", proba[0])
	}
}

func TestPredictWithScaler(t *testing.T) {
	content := `{
		"model_type": "logistic_regression",
		"features": ["daily_return", "ma_5", "volatility_10", "volume_spike", "day_of_week", "lag_close_1", "hl_range"],
		"coefficients": [1.0, 0, 0, 0, 0, 0, 0],
		"intercept": 0.0,
		"classes": [0, 1],
		"scaler": {
			"mean":  [0.5, 0, 0, 0, 0, 0, 0],
			"scale": [0.25, 1, 1, 1, 1, 1, 1]
		}
	}`
	clf, err := LoadLogisticClassifier(writeArtifact(t, content))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// x=1.0 standardizes to (1.0-0.5)/0.25 = 2.0
	_, proba, err := clf.Predict(context.Background(), []float64{1.0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	wantUp := 1.0 / (1.0 + math.Exp(-2.0))
	if math.Abs(proba[1]-wantUp) > 1e-12 {
		t.Fatalf("proba[1] = %v, want %v", proba[1], wantUp)
	}
}

func TestPredictDimensionCheck(t *testing.T) {
	clf, err := LoadLogisticClassifier(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, _, err := clf.Predict(context.Background(), []float64{1, 2, 3}); err == nil {
		t.Fatalf("expected dimension error")
	}
}
