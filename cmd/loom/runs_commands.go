package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/ledger"
	"loom/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded alignment runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.OpenReadOnly(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			table := renderTable(
				[]string{"Run", "Audio", "Tiers", "Status", "Started"},
				buildRunListRows(runs),
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its segment outcomes",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.OpenReadOnly(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := resolveRun(cmd, store, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:        %s\n", run.ID)
			fmt.Fprintf(out, "Audio:      %s\n", run.AudioPath)
			fmt.Fprintf(out, "Transcript: %s\n", run.TranscriptPath)
			fmt.Fprintf(out, "Tiers:      %s\n", strings.Join(run.Tiers, ", "))
			fmt.Fprintf(out, "Status:     %s\n", formatStatusLabel(string(run.Status)))
			if run.OutputPath != "" {
				fmt.Fprintf(out, "Output:     %s\n", run.OutputPath)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
			}
			fmt.Fprintf(out, "Started:    %s\n", formatRunTime(run.CreatedAt))
			fmt.Fprintf(out, "Updated:    %s\n", formatRunTime(run.UpdatedAt))

			stats, err := store.SegmentStats(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if rows := buildSegmentStatsRows(stats); len(rows) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Segments", "Count"}, rows, 2))
			}

			segments, err := store.Segments(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if !showAll {
				failed := segments[:0:0]
				for _, seg := range segments {
					if seg.Status == ledger.SegmentFailed {
						failed = append(failed, seg)
					}
				}
				segments = failed
			}
			if len(segments) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Tier", "Window", "Status", "Elapsed", "Text"},
					buildSegmentRows(segments, !showAll),
					1,
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "Show every segment, not only failures")
	return cmd
}

// resolveRun accepts a full run ID or any unambiguous prefix.
func resolveRun(cmd *cobra.Command, store *ledger.Store, arg string) (*ledger.Run, error) {
	arg = strings.TrimSpace(arg)
	run, err := store.Run(cmd.Context(), arg)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}

	runs, err := store.Runs(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var matches []*ledger.Run
	for _, candidate := range runs {
		if strings.HasPrefix(candidate.ID, arg) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "runs", "show", fmt.Sprintf("no run matches %q", arg), nil)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, shortRunID(m.ID))
		}
		return nil, services.Wrap(services.ErrValidation, "runs", "show",
			fmt.Sprintf("%q matches %d runs (%s)", arg, len(matches), strings.Join(ids, ", ")), nil)
	}
}
