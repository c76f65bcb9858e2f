package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/concat"
	"loom/internal/config"
	"loom/internal/services"
)

func newConcatCommand(ctx *commandContext) *cobra.Command {
	var tierName string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "concat <label-file>...",
		Short: "Merge label files covering adjacent time ranges into one",
		Long: `Concat merges label files whose tiers tile adjacent spans of the same
recording, in time order regardless of argument order. Inputs may be
TextGrids or tabular label files; the merged result is tabular, on stdout
unless -o names a file.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runConcat(cmd, cfg, args, tierName, outputPath)
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "", "Tier whose span orders the inputs (default: union span)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the merged label file here instead of stdout")
	return cmd
}

func runConcat(cmd *cobra.Command, cfg *config.Config, args []string, tierName, outputPath string) error {
	inputs := make([]concat.Input, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "concat", "resolve path", arg, err)
		}
		file, err := readLabelFile(path, cfg.Files.InputEncoding)
		if err != nil {
			return err
		}
		inputs = append(inputs, concat.Input{Path: path, File: file})
	}

	merged, err := concat.Timelines(inputs, concat.Options{Tier: tierName})
	if err != nil {
		return err
	}

	outPath := strings.TrimSpace(outputPath)
	if outPath != "" {
		if outPath, err = config.ExpandPath(outPath); err != nil {
			return services.Wrap(services.ErrConfiguration, "concat", "resolve output path", outputPath, err)
		}
	}
	if err := writeTabular(cmd.OutOrStdout(), outPath, merged, cfg.Files.OutputEncoding); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	}
	return nil
}
