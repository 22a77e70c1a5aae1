//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Serving data and model
		ProvideFeatureStore,
		ProvideClassifier,
		ProvideResponseCache,

		// Use case and HTTP surface
		ProvidePredictor,
		ProvidePredictHandler,

		// Optional Kafka drain path
		ProvideConsumerSet,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
