package main

import (
	"github.com/spf13/cobra"

	"loom/internal/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var workspaceFlag string

	ctx := newCommandContext(&configFlag, &workspaceFlag)

	rootCmd := &cobra.Command{
		Use:           "loom",
		Short:         "Forced-alignment orchestration and tier merge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Scripts branch on exit codes, so flag mistakes must exit 2 like every
	// other configuration problem.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return services.Wrap(services.ErrConfiguration, cmd.Name(), "usage", err.Error(), nil)
	})

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "Workspace directory for scratch files and the run ledger")

	rootCmd.AddCommand(newAlignCommand(ctx))
	rootCmd.AddCommand(newConcatCommand(ctx))
	rootCmd.AddCommand(newSplitCommand(ctx))
	rootCmd.AddCommand(newDictCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}

// usageArgs converts positional-argument mistakes into configuration
// errors so they reach the shell as exit code 2.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return services.Wrap(services.ErrConfiguration, cmd.Name(), "usage", err.Error(), nil)
		}
		return nil
	}
}
