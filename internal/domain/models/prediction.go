package models

import "time"

// Direction labels match the classifier's class encoding: 0=DOWN, 1=UP.
const (
	DirectionDown = "DOWN"
	DirectionUp   = "UP"
)

// PredictionResult is computed on demand per request and never persisted.
type PredictionResult struct {
	Symbol        string
	Prediction    string  // "UP" | "DOWN"
	Confidence    float64 // probability mass of the predicted class, [0,1]
	PredictedDate time.Time
}
