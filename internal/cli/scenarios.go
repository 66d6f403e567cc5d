package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/gasbench/internal/cli/render"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// NewScenariosCmd creates the scenarios command
func NewScenariosCmd() *cobra.Command {
	var protocol string

	cmd := &cobra.Command{
		Use:     "scenarios",
		Aliases: []string{"ls"},
		Short:   "List the configured scenarios",
		Long: `List the scenarios, tokens and protocol contracts gasbench would benchmark,
as resolved from gasbench.toml and the built-in mainnet defaults.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListScenariosParams{}
			if protocol != "" {
				params.Protocol, err = domain.ParseProtocol(protocol)
				if err != nil {
					return err
				}
			}

			result, err := app.ListScenarios.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return render.NewScenariosRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVarP(&protocol, "protocol", "p", "", "Only list scenarios that benchmark this protocol")

	return cmd
}
