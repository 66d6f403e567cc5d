package usecase_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/adapters/anvil"
	"github.com/trebuchet-org/gasbench/internal/adapters/blockchain"
	"github.com/trebuchet-org/gasbench/internal/adapters/senders"
	"github.com/trebuchet-org/gasbench/internal/config"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// TestRunBenchmark_Fork runs every default scenario against a real mainnet fork.
// Order runners check exact balance deltas, so a clean run means every fill settled in full.
func TestRunBenchmark_Fork(t *testing.T) {
	if os.Getenv("GASBENCH_FORK_URL") == "" {
		t.Skip("GASBENCH_FORK_URL is not set")
	}
	if _, err := exec.LookPath("anvil"); err != nil {
		t.Skip("anvil is not installed")
	}

	v := config.SetupViper(t.TempDir(), &cobra.Command{Use: "test"})
	v.Set("port", "18545")
	v.Set("non_interactive", true)
	cfg, err := config.Provider(v)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Fork.RPCURL)
	cfg.Fork.Name = "gasbench-test"

	log := discardLogger()
	anvilManager := anvil.NewManagerWithLogger(log)
	chain := blockchain.NewClient(log)
	defer chain.Close()
	accounts, err := senders.NewService(cfg)
	require.NoError(t, err)

	fixtures := usecase.NewFixtureLoader(chain, anvilManager, accounts, cfg, log)
	uc := usecase.NewRunBenchmark(cfg, anvilManager, chain, accounts, &staticSelector{}, fixtures, usecase.DefaultRunners(), log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := uc.Run(ctx, usecase.RunBenchmarkParams{})
	require.NoError(t, err)

	expected := 0
	for _, s := range cfg.Scenarios {
		expected += len(s.Protocols)
	}
	assert.Equal(t, expected, result.Table.Len())
	for _, m := range result.Table.Measurements() {
		assert.NotZero(t, m.GasUsed, "%s/%s", m.Scenario, m.Protocol)
	}
}
