package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/gasbench/internal/cli/render"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// NewEncodeCmd creates the encode command with subcommands
func NewEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "encode",
		Short:       "Encode router parameters",
		Long:        `Encode the packed parameters the benchmarked routers take, and decode them back for review.`,
		Annotations: map[string]string{offlineAnnotation: "true"},
	}
	cmd.PersistentFlags().Bool("raw", false, "Print only the encoded value")

	cmd.AddCommand(newEncodePoolCmd())
	cmd.AddCommand(newEncodePathCmd())
	cmd.AddCommand(newEncodePercentCmd())

	return cmd
}

func newEncodePoolCmd() *cobra.Command {
	params := usecase.EncodeCalldataParams{Kind: usecase.EncodePool}

	cmd := &cobra.Command{
		Use:   "pool <address>",
		Short: "Pack a pool address with 1inch unoswap flags",
		Long: `Pack a pool address and its routing flags into the uint256 word 1inch unoswap takes.

Example:
  gasbench encode pool 0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640 --zero-for-one`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Pool = args[0]
			return runEncode(cmd, params)
		},
	}

	cmd.Flags().BoolVar(&params.ZeroForOne, "zero-for-one", false, "Swap token0 for token1")
	cmd.Flags().BoolVar(&params.UnwrapWETH, "unwrap-weth", false, "Unwrap WETH output to ETH")
	cmd.Flags().StringVar(&params.PoolProtocol, "protocol", "v3", "Pool type (v2, v3, curve)")

	return cmd
}

func newEncodePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <token> <fee> <token> [<fee> <token>...]",
		Short: "Encode a Uniswap V3 multi-hop path",
		Long: `Encode tokens and fee tiers into the packed path Uniswap V3 style routers read.

Example:
  gasbench encode path 0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2 500 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48`,
		Args:         cobra.MinimumNArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, usecase.EncodeCalldataParams{Kind: usecase.EncodePath, Path: args})
		},
	}
}

func newEncodePercentCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "percent <amount> <percentage>",
		Short:        "Compute a percentage of an amount in base units",
		Long:         `Compute floor(amount * percentage / 100), the way minimum returns are derived from slippage.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, usecase.EncodeCalldataParams{Kind: usecase.EncodePercent, Amount: args[0], Percentage: args[1]})
		},
	}
}

func runEncode(cmd *cobra.Command, params usecase.EncodeCalldataParams) error {
	result, err := usecase.NewEncodeCalldata().Run(cmd.Context(), params)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetBool("raw")
	return render.NewEncodeRenderer(cmd.OutOrStdout(), raw).Render(result)
}
