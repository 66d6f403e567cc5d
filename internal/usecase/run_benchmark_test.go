package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// fixedRunner reports a constant gas figure for its protocol
type fixedRunner struct {
	protocol domain.ProtocolKey
	gas      uint64
	calls    int
}

func (r *fixedRunner) Protocol() domain.ProtocolKey { return r.protocol }

func (r *fixedRunner) Run(_ context.Context, env *usecase.RunEnv, _ domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	r.calls++
	if env.Taker.Address() != fx.Taker.Address {
		return nil, errors.New("runner got a different taker than the fixture")
	}
	return &domain.Submission{TxHash: common.BigToHash(common.Big1), GasUsed: r.gas}, nil
}

// staticSelector returns every scenario it is offered
type staticSelector struct{ prompted bool }

func (s *staticSelector) SelectScenarios(_ context.Context, scenarios []domain.Scenario, _ string) ([]domain.Scenario, error) {
	s.prompted = true
	return scenarios, nil
}

type benchmarkHarness struct {
	cfg      *config.RuntimeConfig
	anvil    *MockAnvilManager
	chain    *MockChainClient
	selector *staticSelector
	runners  []*fixedRunner
	uc       *usecase.RunBenchmark
}

func newBenchmarkHarness(t *testing.T) *benchmarkHarness {
	t.Helper()

	usdcWeth := wethUsdc(domain.ProtocolZeroExRFQ, domain.ProtocolParaswapRFQ)
	usdcWeth.Name = "usdc-weth"
	usdcWeth.Sell, usdcWeth.Buy = usdc, weth
	usdcWeth.SellAmount, usdcWeth.BuyAmount = usdcWeth.BuyAmount, usdcWeth.SellAmount

	cfg := fixtureConfig()
	cfg.Reference = domain.ProtocolZeroExRFQ
	cfg.Fork = config.ForkConfig{Name: "fork", Port: "8545", RPCURL: "https://eth.example"}
	cfg.Scenarios = []domain.Scenario{
		wethUsdc(domain.ProtocolZeroExRFQ, domain.ProtocolParaswapRFQ, domain.ProtocolOneInchLOP),
		usdcWeth,
	}

	h := &benchmarkHarness{
		cfg:      cfg,
		anvil:    &MockAnvilManager{},
		chain:    happyChain(),
		selector: &staticSelector{},
		runners: []*fixedRunner{
			{protocol: domain.ProtocolOneInchLOP, gas: 140_000},
			{protocol: domain.ProtocolZeroExRFQ, gas: 100_000},
			{protocol: domain.ProtocolParaswapRFQ, gas: 120_000},
		},
	}

	runners := make([]usecase.Runner, len(h.runners))
	for i, r := range h.runners {
		runners[i] = r
	}
	accounts := newTestAccounts(t)
	fixtures := usecase.NewFixtureLoader(h.chain, newFakeDevChain(), accounts, cfg, discardLogger())
	h.uc = usecase.NewRunBenchmark(cfg, h.anvil, h.chain, accounts, h.selector, fixtures, runners, discardLogger())
	return h
}

func TestRunBenchmark_StartsAndStopsFork(t *testing.T) {
	h := newBenchmarkHarness(t)
	h.anvil.On("GetStatus", mock.Anything, mock.Anything).Return(&domain.AnvilStatus{}, nil)
	h.anvil.On("Start", mock.Anything, mock.MatchedBy(func(i *domain.AnvilInstance) bool {
		return i.ForkURL == "https://eth.example" && i.ChainID == "1"
	})).Return(nil).Once()
	h.anvil.On("Stop", mock.Anything, mock.Anything).Return(nil).Once()

	progress := &recordingProgress{}
	result, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Progress: progress})
	require.NoError(t, err)

	h.anvil.AssertExpectations(t)
	h.chain.AssertCalled(t, "Connect", mock.Anything, "http://127.0.0.1:8545", uint64(1))
	assert.True(t, h.selector.prompted)

	assert.Equal(t, []string{"weth-usdc", "usdc-weth"}, result.Table.Scenarios())
	assert.Equal(t, 5, result.Table.Len())
	assert.Equal(t, domain.ProtocolZeroExRFQ, result.Reference)
	assert.NotEqual(t, uuid.Nil, result.RunID)

	m, ok := result.Table.Get("weth-usdc", domain.ProtocolOneInchLOP)
	require.True(t, ok)
	assert.Equal(t, uint64(140_000), m.GasUsed)
	_, ok = result.Table.Get("usdc-weth", domain.ProtocolOneInchLOP)
	assert.False(t, ok)

	var measured []*domain.GasMeasurement
	for _, e := range progress.events {
		if gm, ok := e.Metadata.(*domain.GasMeasurement); ok {
			measured = append(measured, gm)
		}
	}
	assert.Len(t, measured, 5)
	last := progress.events[len(progress.events)-1]
	assert.Equal(t, usecase.StageComplete, last.Stage)
	assert.Equal(t, 5, last.Total)
}

func TestRunBenchmark_KeepFork(t *testing.T) {
	h := newBenchmarkHarness(t)
	h.cfg.KeepFork = true
	h.anvil.On("GetStatus", mock.Anything, mock.Anything).Return(&domain.AnvilStatus{}, nil)
	h.anvil.On("Start", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"weth-usdc"}})
	require.NoError(t, err)
	h.anvil.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
}

func TestRunBenchmark_ReusesRunningFork(t *testing.T) {
	h := newBenchmarkHarness(t)
	h.anvil.On("GetStatus", mock.Anything, mock.Anything).
		Return(&domain.AnvilStatus{Running: true, RPCHealthy: true, RPCURL: "http://127.0.0.1:8545"}, nil)

	_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"usdc-weth"}})
	require.NoError(t, err)
	h.anvil.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	h.anvil.AssertNotCalled(t, "Stop", mock.Anything, mock.Anything)
	assert.False(t, h.selector.prompted)
}

func TestRunBenchmark_ExternalNode(t *testing.T) {
	h := newBenchmarkHarness(t)
	h.cfg.RPCURL = "http://10.0.0.2:8545"

	_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"weth-usdc"}})
	require.NoError(t, err)
	h.anvil.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
	h.chain.AssertCalled(t, "Connect", mock.Anything, "http://10.0.0.2:8545", uint64(1))
}

func TestRunBenchmark_ProtocolFilter(t *testing.T) {
	h := newBenchmarkHarness(t)
	h.cfg.RPCURL = "http://10.0.0.2:8545"

	result, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{
		Protocols: []domain.ProtocolKey{domain.ProtocolOneInchLOP},
	})
	require.NoError(t, err)

	// only weth-usdc benchmarks the 1inch limit order protocol
	assert.Equal(t, []string{"weth-usdc"}, result.Table.Scenarios())
	assert.Equal(t, 1, result.Table.Len())
	assert.Equal(t, 1, h.runners[0].calls)
	assert.Zero(t, h.runners[1].calls)

	// the configured scenario keeps its protocols
	assert.Len(t, h.cfg.Scenarios[0].Protocols, 3)
}

func TestRunBenchmark_Errors(t *testing.T) {
	t.Run("unknown scenario", func(t *testing.T) {
		h := newBenchmarkHarness(t)
		_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"dai-usdt"}})
		assert.ErrorIs(t, err, domain.ErrUnknownScenario)
	})

	t.Run("filter matches nothing", func(t *testing.T) {
		h := newBenchmarkHarness(t)
		_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{
			Protocols: []domain.ProtocolKey{domain.ProtocolCoW},
		})
		assert.ErrorContains(t, err, "no scenario benchmarks any of the selected protocols")
	})

	t.Run("no fork url", func(t *testing.T) {
		h := newBenchmarkHarness(t)
		h.cfg.Fork.RPCURL = ""
		h.anvil.On("GetStatus", mock.Anything, mock.Anything).Return(&domain.AnvilStatus{}, nil)

		_, err := h.uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"weth-usdc"}})
		assert.ErrorContains(t, err, "no fork URL configured")
	})

	t.Run("contract missing stops the fork", func(t *testing.T) {
		h := newBenchmarkHarness(t)
		h.anvil.On("GetStatus", mock.Anything, mock.Anything).Return(&domain.AnvilStatus{}, nil)
		h.anvil.On("Start", mock.Anything, mock.Anything).Return(nil)
		h.anvil.On("Stop", mock.Anything, mock.Anything).Return(nil).Once()

		chain := &MockChainClient{}
		chain.On("Connect", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		chain.On("CheckContract", mock.Anything, mock.Anything).Return(false, "no code at address", nil)

		runners := []usecase.Runner{h.runners[0], h.runners[1], h.runners[2]}
		accounts := newTestAccounts(t)
		fixtures := usecase.NewFixtureLoader(chain, newFakeDevChain(), accounts, h.cfg, discardLogger())
		uc := usecase.NewRunBenchmark(h.cfg, h.anvil, chain, accounts, h.selector, fixtures, runners, discardLogger())

		_, err := uc.Run(context.Background(), usecase.RunBenchmarkParams{Scenarios: []string{"weth-usdc"}})
		assert.ErrorIs(t, err, domain.ErrContractNotFound)
		h.anvil.AssertExpectations(t)
	})
}
