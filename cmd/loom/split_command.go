package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/services"
	"loom/internal/split"
	"loom/internal/textgrid"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var tierName string
	var chunkSeconds float64
	var outDir string

	cmd := &cobra.Command{
		Use:   "split <textgrid>",
		Short: "Cut a long transcript into alignment-sized chunks",
		Long: `Split cuts the transcript at label boundaries of the selected tier
nearest to multiples of the chunk duration, never mid-label. Chunks keep
absolute times and abut exactly, so aligning each and concatenating the
results reproduces one continuous timeline. Each chunk is written as a
TextGrid next to the input unless --out-dir redirects them.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runSplit(cmd, cfg, args[0], tierName, chunkSeconds, outDir)
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "", "Tier whose labels bound the cuts (default: the only tier)")
	cmd.Flags().Float64Var(&chunkSeconds, "chunk-seconds", 600, "Target chunk duration in seconds")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for chunk files (default: alongside the input)")
	return cmd
}

func runSplit(cmd *cobra.Command, cfg *config.Config, arg, tierName string, chunkSeconds float64, outDir string) error {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "split", "resolve path", arg, err)
	}
	file, err := readLabelFile(path, cfg.Files.InputEncoding)
	if err != nil {
		return err
	}

	chunks, err := split.Chunks(file, split.Options{Tier: tierName, TargetDuration: chunkSeconds})
	if err != nil {
		return err
	}

	dir := strings.TrimSpace(outDir)
	if dir == "" {
		dir = filepath.Dir(path)
	} else {
		if dir, err = config.ExpandPath(dir); err != nil {
			return services.Wrap(services.ErrConfiguration, "split", "resolve output directory", outDir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "split", "create output directory", dir, err)
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := cmd.OutOrStdout()
	for i, chunk := range chunks {
		chunkPath := filepath.Join(dir, fmt.Sprintf("%s-%03d.TextGrid", base, i+1))
		if err := textgrid.WriteFile(chunkPath, chunk, cfg.Files.OutputEncoding); err != nil {
			return fmt.Errorf("write chunk %d: %w", i+1, err)
		}
		fmt.Fprintln(out, chunkPath)
	}
	return nil
}
