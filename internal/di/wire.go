//go:build wireinject
// +build wireinject

package di

import (
	"BarPull/pkg/config"
	"BarPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideLimiter,

		// Upstream provider
		ProvideFMPClient,
		ProvideSymbolCache,
		ProvideDirectory,

		// Use cases
		ProvideIndicatorEngine,
		ProvideBarsUseCase,
		ProvideIndicatorsUseCase,

		// HTTP surface
		ProvideBarsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
