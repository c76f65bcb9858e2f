package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/dictionary"
	"loom/internal/services"
	"loom/internal/timeline"
)

func newDictCommand(ctx *commandContext) *cobra.Command {
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Pronunciation dictionary utilities",
	}
	dictCmd.AddCommand(newDictCheckCommand(ctx))
	return dictCmd
}

func newDictCheckCommand(ctx *commandContext) *cobra.Command {
	var tierFlags []string

	cmd := &cobra.Command{
		Use:   "check <textgrid>",
		Short: "Report transcript words the dictionary cannot pronounce",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDictCheck(cmd, cfg, args[0], tierFlags)
		},
	}

	cmd.Flags().StringArrayVar(&tierFlags, "tier", nil, "Tier to check (repeatable; default: every interval tier)")
	return cmd
}

func runDictCheck(cmd *cobra.Command, cfg *config.Config, arg string, tierFlags []string) error {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "dict", "resolve path", arg, err)
	}
	file, err := readLabelFile(path, cfg.Files.InputEncoding)
	if err != nil {
		return err
	}

	selectors, err := parseTierSelectors(tierFlags)
	if err != nil {
		return err
	}
	sources, err := selectSources(file, path, selectors)
	if err != nil {
		return err
	}
	tiers := make([]*timeline.Tier, 0, len(sources))
	for _, src := range sources {
		tiers = append(tiers, src.Tier)
	}

	dict, err := dictionary.Load(cfg.Dictionary.MainPath, cfg.LocalDictionaryPath(path), cfg.Dictionary.Encoding)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := dictionary.FindMissingWords(tiers, dict)
	if len(missing) == 0 {
		fmt.Fprintf(out, "All words covered (%d dictionary entries)\n", dict.Len())
		return nil
	}

	rows := make([][]string, 0, len(missing))
	for i, word := range missing {
		rows = append(rows, []string{strconv.Itoa(i + 1), word})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Missing Word"}, rows, 1))
	return services.Wrap(services.ErrVocabulary, "dict", "check",
		fmt.Sprintf("%d words missing from the dictionary; add them to %s next to the transcript",
			len(missing), cfg.Dictionary.LocalName), nil)
}
