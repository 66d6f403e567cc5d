package app

import (
	"github.com/trebuchet-org/gasbench/internal/domain/config"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Progress usecase.ProgressSink

	// Use cases
	RunBenchmark  *usecase.RunBenchmark
	ManageFork    *usecase.ManageFork
	ListScenarios *usecase.ListScenarios

	// Adapters (needed for special cases like log streaming)
	AnvilManager usecase.AnvilManager
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	progress usecase.ProgressSink,
	runBenchmark *usecase.RunBenchmark,
	manageFork *usecase.ManageFork,
	listScenarios *usecase.ListScenarios,
	anvilManager usecase.AnvilManager,
) (*App, error) {
	return &App{
		Config:        cfg,
		Progress:      progress,
		RunBenchmark:  runBenchmark,
		ManageFork:    manageFork,
		ListScenarios: listScenarios,
		AnvilManager:  anvilManager,
	}, nil
}
