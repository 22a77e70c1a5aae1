package service

import "context"

// DirectionClassifier is the trained binary model predicting next-day price
// direction over the fixed 7-feature vector. Class 0 is DOWN, class 1 is UP.
// Proba holds the probability distribution over both classes in that order.
type DirectionClassifier interface {
	Predict(ctx context.Context, features []float64) (label int, proba []float64, err error)
}
