//go:build wireinject
// +build wireinject

package di

import (
	"SmartCVD/pkg/config"
	"SmartCVD/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideEventPublisher,
		ProvideReportCache,
		ProvideLimiter,

		// Calculator
		ProvideCatalog,
		ProvideEstimator,
		ProvideAdjustor,
		ProvideAssessmentService,

		// HTTP
		ProvideAssessmentHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
