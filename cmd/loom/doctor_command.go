package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/preflight"
	"loom/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the aligner, dictionary, and workspace are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDoctor(cmd, cfg, ctx.configFlag)
		},
	}
}

func runDoctor(cmd *cobra.Command, cfg *config.Config, configFlag *string) error {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Configuration", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, configStatusLine(configFlag, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Preflight", colorize) {
		fmt.Fprintln(stdout, line)
	}
	results := preflight.RunAll(cfg)
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dictionary", colorize) {
		fmt.Fprintln(stdout, line)
	}
	probe := preflight.ProbeDictionary(cfg.Dictionary.MainPath, cfg.Dictionary.Encoding)
	probeKind := statusOK
	if !probe.Present {
		probeKind = statusWarn
	}
	fmt.Fprintln(stdout, renderStatusLine("Main dictionary", probeKind, probe.Detail(), colorize))

	if failed := preflight.Failed(results); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, result := range failed {
			names = append(names, result.Name)
		}
		return services.Wrap(services.ErrConfiguration, "doctor", "preflight",
			fmt.Sprintf("%d of %d checks failed (%s)", len(failed), len(results), strings.Join(names, ", ")), nil)
	}
	return nil
}

func configStatusLine(configFlag *string, colorize bool) string {
	var flagPath string
	if configFlag != nil {
		flagPath = strings.TrimSpace(*configFlag)
	}
	_, path, exists, err := config.Load(flagPath)
	if err != nil {
		return renderStatusLine("Config", statusError, err.Error(), colorize)
	}
	if !exists {
		return renderStatusLine("Config", statusInfo, fmt.Sprintf("defaults in effect (no file at %s)", path), colorize)
	}
	return renderStatusLine("Config", statusOK, path, colorize)
}
