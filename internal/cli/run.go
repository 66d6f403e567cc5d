package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/gasbench/internal/cli/render"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Benchmark the configured scenarios on a fork",
		Long: `Start an anvil fork of mainnet, prepare maker and taker accounts for every scenario
and execute the trade once through each protocol. The gas used by each taker
transaction is reported in a table, with deltas against the reference protocol.

Without scenario arguments the scenarios are picked interactively, or all of them
run when --non-interactive is set.

Examples:
  # Benchmark every protocol of the default scenarios
  gasbench run --fork-url $MAINNET_RPC_URL

  # Compare two protocols on one scenario
  gasbench run weth-usdc -p 0x-rfq -p cow --reference 0x-rfq

  # Reuse a node that is already running and emit JSON
  gasbench run --rpc-url http://127.0.0.1:8545 --format json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RunBenchmark.Run(cmd.Context(), usecase.RunBenchmarkParams{
				Scenarios: args,
				Progress:  app.Progress,
			})
			if err != nil {
				return err
			}

			renderer := render.NewGasRenderer(cmd.OutOrStdout(), app.Config.Format, !color.NoColor)
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringSliceP("protocol", "p", nil, "Only benchmark these protocols (repeatable)")
	cmd.Flags().String("format", "table", "Output format (table, json, yaml)")
	cmd.Flags().String("reference", "", "Protocol the deltas are computed against (default 1inch-unoswap)")
	cmd.Flags().String("rpc-url", "", "Use an already running node instead of starting a fork")
	cmd.Flags().Bool("keep-fork", false, "Leave the fork running after the benchmark")
	cmd.Flags().Bool("no-verify", false, "Skip the balance checks around each fill")
	addForkFlags(cmd.Flags())

	return cmd
}
