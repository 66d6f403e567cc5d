package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/gasbench/internal/app"
	"github.com/trebuchet-org/gasbench/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// offlineAnnotation marks commands that run without loading gasbench.toml
	offlineAnnotation = "offline"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gasbench",
		Short: "Gas benchmarks for DEX execution paths on a mainnet fork",
		Long: `gasbench measures the gas a taker pays to execute the same trade through
1inch, Uniswap, 0x, Paraswap and CoW Protocol on a local anvil fork of mainnet,
and prints the results side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}

			v := config.SetupViper(config.FindProjectRoot(), cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts and the spinner")
	rootCmd.PersistentFlags().String("config", "", "Path to gasbench.toml (defaults to the nearest one)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	runCmd := NewRunCmd()
	runCmd.GroupID = "main"
	rootCmd.AddCommand(runCmd)

	scenariosCmd := NewScenariosCmd()
	scenariosCmd.GroupID = "main"
	rootCmd.AddCommand(scenariosCmd)

	encodeCmd := NewEncodeCmd()
	encodeCmd.GroupID = "main"
	rootCmd.AddCommand(encodeCmd)

	forkCmd := NewForkCmd()
	forkCmd.GroupID = "management"
	rootCmd.AddCommand(forkCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// needsApp tells whether a command needs the wired application
func needsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[offlineAnnotation] == "true" {
			return false
		}
	}
	return true
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
