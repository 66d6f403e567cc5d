//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/gasbench/internal/adapters"
	"github.com/trebuchet-org/gasbench/internal/config"
	"github.com/trebuchet-org/gasbench/internal/logging"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,
		adapters.ProvideProgressSink,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.DefaultRunners,
		usecase.NewFixtureLoader,
		usecase.NewRunBenchmark,
		usecase.NewManageFork,
		usecase.NewListScenarios,

		// App
		NewApp,
	)
	return nil, nil
}
