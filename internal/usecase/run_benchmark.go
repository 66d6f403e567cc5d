package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
	"github.com/trebuchet-org/gasbench/internal/report"
)

// RunBenchmarkParams contains parameters for a benchmark run
type RunBenchmarkParams struct {
	// Scenarios names the scenarios to run. Empty selects interactively, or runs all.
	Scenarios []string
	// Protocols restricts every scenario to these protocols. Empty keeps the configured ones.
	Protocols []domain.ProtocolKey
	Progress  ProgressSink
}

// RunBenchmarkResult contains the measured gas table of a run
type RunBenchmarkResult struct {
	RunID     uuid.UUID
	ChainID   *big.Int
	Reference domain.ProtocolKey
	Table     *report.Table
	Fork      *domain.AnvilInstance
}

// RunBenchmark measures the gas of every protocol of every selected scenario on a fork
type RunBenchmark struct {
	config       *config.RuntimeConfig
	anvilManager AnvilManager
	chain        ChainClient
	accounts     AccountProvider
	selector     ScenarioSelector
	fixtures     *FixtureLoader
	runners      []Runner
	log          *slog.Logger
}

// NewRunBenchmark creates a new RunBenchmark use case
func NewRunBenchmark(
	cfg *config.RuntimeConfig,
	anvilManager AnvilManager,
	chain ChainClient,
	accounts AccountProvider,
	selector ScenarioSelector,
	fixtures *FixtureLoader,
	runners []Runner,
	log *slog.Logger,
) *RunBenchmark {
	return &RunBenchmark{
		config:       cfg,
		anvilManager: anvilManager,
		chain:        chain,
		accounts:     accounts,
		selector:     selector,
		fixtures:     fixtures,
		runners:      runners,
		log:          log.With("component", "benchmark"),
	}
}

// Run executes the benchmark
func (uc *RunBenchmark) Run(ctx context.Context, params RunBenchmarkParams) (result *RunBenchmarkResult, err error) {
	progress := params.Progress
	if progress == nil {
		progress = NopProgress{}
	}

	scenarios, err := uc.resolveScenarios(ctx, params)
	if err != nil {
		return nil, err
	}

	result = &RunBenchmarkResult{
		RunID:     uuid.New(),
		ChainID:   new(big.Int).SetUint64(uc.config.ChainID),
		Reference: uc.config.Reference,
		Table:     report.NewTable(),
	}
	log := uc.log.With("run", result.RunID.String())

	progress.OnProgress(ctx, ProgressEvent{Stage: StageFork, Message: "Preparing fork", Spinner: true})
	node, started, err := uc.startFork(ctx)
	if err != nil {
		return nil, err
	}
	result.Fork = node
	if started && !uc.config.KeepFork {
		defer func() {
			if stopErr := uc.anvilManager.Stop(context.WithoutCancel(ctx), node); stopErr != nil && err == nil {
				err = fmt.Errorf("failed to stop fork: %w", stopErr)
			}
		}()
	}

	if err := uc.chain.Connect(ctx, node.RPCURL(), uc.config.ChainID); err != nil {
		return nil, err
	}
	env, err := uc.runEnv()
	if err != nil {
		return nil, err
	}

	total := lo.SumBy(scenarios, func(s domain.Scenario) int { return len(s.Protocols) })
	current := 0
	for _, scenario := range scenarios {
		for _, protocol := range scenario.Protocols {
			current++
			runner, err := RunnerFor(uc.runners, protocol)
			if err != nil {
				return nil, err
			}

			progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageFixture,
				Current: current,
				Total:   total,
				Message: fmt.Sprintf("%s: loading fixture", scenario.Name),
				Spinner: true,
			})
			fx, err := uc.fixtures.Load(ctx, node, scenario)
			if err != nil {
				return nil, err
			}

			progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageSubmit,
				Current: current,
				Total:   total,
				Message: fmt.Sprintf("%s: %s", scenario.Name, protocol),
				Spinner: true,
			})
			sub, err := runner.Run(ctx, env, scenario, fx)
			if err != nil {
				return nil, fmt.Errorf("scenario %s, protocol %s: %w", scenario.Name, protocol, err)
			}

			m := domain.GasMeasurement{
				Scenario: scenario.Name,
				Protocol: protocol,
				GasUsed:  sub.GasUsed,
				TxHash:   sub.TxHash,
			}
			if err := result.Table.Record(m); err != nil {
				return nil, err
			}
			log.Info("measured", "scenario", scenario.Name, "protocol", string(protocol), "tx", sub.TxHash.Hex(), "gas", sub.GasUsed)
			progress.OnProgress(ctx, ProgressEvent{
				Stage:    StageSubmit,
				Current:  current,
				Total:    total,
				Message:  fmt.Sprintf("%s: %s", scenario.Name, protocol),
				Metadata: &m,
			})
		}
	}

	progress.OnProgress(ctx, ProgressEvent{Stage: StageComplete, Current: total, Total: total})
	return result, nil
}

// resolveScenarios picks the named scenarios, or lets the user choose, and applies the protocol filter
func (uc *RunBenchmark) resolveScenarios(ctx context.Context, params RunBenchmarkParams) ([]domain.Scenario, error) {
	var scenarios []domain.Scenario
	if len(params.Scenarios) > 0 {
		for _, name := range lo.Uniq(params.Scenarios) {
			s, ok := uc.config.Scenario(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownScenario, name)
			}
			scenarios = append(scenarios, s)
		}
	} else {
		selected, err := uc.selector.SelectScenarios(ctx, uc.config.Scenarios, "Select scenarios to benchmark")
		if err != nil {
			return nil, err
		}
		scenarios = append([]domain.Scenario(nil), selected...)
	}

	filter := params.Protocols
	if len(filter) == 0 {
		filter = uc.config.Protocols
	}
	if len(filter) > 0 {
		for i := range scenarios {
			scenarios[i].Protocols = lo.Intersect(filter, scenarios[i].Protocols)
		}
	}

	scenarios = lo.Filter(scenarios, func(s domain.Scenario, _ int) bool { return len(s.Protocols) > 0 })
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario benchmarks any of the selected protocols")
	}
	return scenarios, nil
}

// startFork starts the configured fork unless an external node is set or the fork already runs.
// started tells whether this run owns the process.
func (uc *RunBenchmark) startFork(ctx context.Context) (node *domain.AnvilInstance, started bool, err error) {
	node = ForkInstance(uc.config)
	if node.URL != "" {
		return node, false, nil
	}

	status, err := uc.anvilManager.GetStatus(ctx, node)
	if err == nil && status.Running && status.RPCHealthy {
		uc.log.Info("reusing running fork", "name", node.Name, "rpc", status.RPCURL)
		return node, false, nil
	}
	if node.ForkURL == "" {
		return nil, false, fmt.Errorf("no fork URL configured, set fork.rpc_url in gasbench.toml, pass --fork-url or point --rpc-url at a running node")
	}
	if err := uc.anvilManager.Start(ctx, node); err != nil {
		return nil, false, fmt.Errorf("failed to start fork: %w", err)
	}
	return node, true, nil
}

func (uc *RunBenchmark) runEnv() (*RunEnv, error) {
	maker, err := uc.accounts.GetSender(MakerAccount)
	if err != nil {
		return nil, err
	}
	taker, err := uc.accounts.GetSender(TakerAccount)
	if err != nil {
		return nil, err
	}
	return &RunEnv{Chain: uc.chain, Maker: maker, Taker: taker, Verify: !uc.config.NoVerify}, nil
}
