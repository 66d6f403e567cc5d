package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/trebuchet-org/gasbench/internal/cli/render"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// addForkFlags adds the flags that override the [fork] section of gasbench.toml
func addForkFlags(flags *pflag.FlagSet) {
	flags.String("fork-url", "", "Upstream RPC URL to fork from")
	flags.Uint64("fork-block", 0, "Block number to fork at (default latest)")
	flags.String("port", "", "RPC port of the fork (default 8545)")
	flags.Uint64("chain-id", 0, "Chain ID of the forked network (default 1)")
}

// NewForkCmd creates the fork command with subcommands
func NewForkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fork",
		Short: "Manage the benchmark fork",
		Long: `Manage the anvil fork gasbench benchmarks on. A fork started here stays up
and is reused by 'gasbench run', which saves the startup cost between runs.`,
	}
	addForkFlags(cmd.PersistentFlags())

	cmd.AddCommand(newForkOperationCmd(usecase.ForkStart, "Start the fork", "Start the fork in the background. Fails if it is already running."))
	cmd.AddCommand(newForkOperationCmd(usecase.ForkStop, "Stop the fork", "Stop the fork if it is running."))
	cmd.AddCommand(newForkOperationCmd(usecase.ForkRestart, "Restart the fork", "Stop the fork if it is running and start a fresh one."))
	cmd.AddCommand(newForkOperationCmd(usecase.ForkStatus, "Show fork status", "Show the process and RPC health of the fork."))
	cmd.AddCommand(newForkOperationCmd(usecase.ForkLogs, "Show fork logs", "Follow the anvil log of the fork."))

	return cmd
}

func newForkOperationCmd(operation, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:          operation,
		Short:        short,
		Long:         long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForkCommand(cmd, operation)
		},
	}
}

// runForkCommand executes a fork management operation
func runForkCommand(cmd *cobra.Command, operation string) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	result, err := app.ManageFork.Execute(cmd.Context(), usecase.ManageForkParams{Operation: operation})
	if err != nil {
		return err
	}

	renderer := render.NewForkRenderer(cmd.OutOrStdout())
	if operation == usecase.ForkLogs {
		if err := renderer.RenderLogsHeader(result); err != nil {
			return err
		}
		return app.AnvilManager.StreamLogs(cmd.Context(), result.Instance, cmd.OutOrStdout())
	}
	return renderer.Render(result)
}
