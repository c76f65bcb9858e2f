package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/align"
	"loom/internal/config"
	"loom/internal/deps"
	"loom/internal/dictionary"
	"loom/internal/ledger"
	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/services/pyalign"
	"loom/internal/timeline"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var tierFlags []string
	var outputPath string
	var noDictCheck bool
	var alignerOverride string

	cmd := &cobra.Command{
		Use:   "align <audio> <textgrid>",
		Short: "Align transcript segments against audio into phone and word tiers",
		Long: `Align runs the forced aligner once per non-empty label of each selected
tier and weaves the per-segment results into contiguous phone and word
tiers. Failed segments stay in the output as error labels; the run keeps
going. Output is the compact tabular label format, on stdout unless -o
names a file.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if override := strings.TrimSpace(alignerOverride); override != "" {
				cfg.Aligner.Binary = override
			}
			selectors, err := parseTierSelectors(tierFlags)
			if err != nil {
				return err
			}
			return runAlign(cmd, cfg, logger, alignParams{
				audioPath:   args[0],
				gridPath:    args[1],
				selectors:   selectors,
				outputPath:  outputPath,
				noDictCheck: noDictCheck,
			})
		},
	}

	cmd.Flags().StringArrayVar(&tierFlags, "tier", nil, "Tier to align as name[:channel] (repeatable; default: every interval tier on channel 1)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the aligned label file here instead of stdout")
	cmd.Flags().BoolVar(&noDictCheck, "no-dict-check", false, "Skip the vocabulary gate")
	cmd.Flags().StringVar(&alignerOverride, "aligner", "", "Aligner binary to invoke (overrides configuration)")
	return cmd
}

type alignParams struct {
	audioPath   string
	gridPath    string
	selectors   []tierSelector
	outputPath  string
	noDictCheck bool
}

func runAlign(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, params alignParams) error {
	audioPath, err := config.ExpandPath(params.audioPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "align", "resolve audio path", params.audioPath, err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return services.Wrap(services.ErrConfiguration, "align", "audio file", audioPath, err)
	}
	gridPath, err := config.ExpandPath(params.gridPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "align", "resolve transcript path", params.gridPath, err)
	}

	if status := deps.CheckAligner(cfg.Aligner.Binary); !status.Available {
		return services.Wrap(services.ErrExternalTool, "align", "preflight", status.Detail, nil)
	}

	file, err := readLabelFile(gridPath, cfg.Files.InputEncoding)
	if err != nil {
		return err
	}
	sources, err := selectSources(file, gridPath, params.selectors)
	if err != nil {
		return err
	}

	if cfg.Dictionary.Check && !params.noDictCheck {
		dict, err := dictionary.Load(cfg.Dictionary.MainPath, cfg.LocalDictionaryPath(gridPath), cfg.Dictionary.Encoding)
		if err != nil {
			return err
		}
		tiers := make([]*timeline.Tier, 0, len(sources))
		for _, src := range sources {
			tiers = append(tiers, src.Tier)
		}
		if err := dictionary.Check(tiers, dict); err != nil {
			return err
		}
	}

	outPath := strings.TrimSpace(params.outputPath)
	if outPath != "" {
		if outPath, err = config.ExpandPath(outPath); err != nil {
			return services.Wrap(services.ErrConfiguration, "align", "resolve output path", params.outputPath, err)
		}
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	tierSpecs := make([]string, 0, len(sources))
	if len(params.selectors) == 0 {
		for _, src := range sources {
			tierSpecs = append(tierSpecs, src.Tier.Name)
		}
	} else {
		for _, sel := range params.selectors {
			tierSpecs = append(tierSpecs, sel.String())
		}
	}

	run, err := store.BeginRun(cmd.Context(), ledger.RunSpec{
		AudioPath:      audioPath,
		TranscriptPath: gridPath,
		Tiers:          tierSpecs,
	})
	if err != nil {
		return err
	}
	runCtx := services.WithRunID(cmd.Context(), run.ID)
	runLogger := logging.WithContext(runCtx, logger)

	var aligned, failed int
	observer := func(res align.SegmentResult) {
		seg := ledger.Segment{
			Index:   res.Index,
			Tier:    res.Tier,
			T1:      res.T1,
			T2:      res.T2,
			Text:    res.Text,
			Status:  ledger.SegmentAligned,
			Elapsed: res.Elapsed,
		}
		if res.Err != nil {
			seg.Status = ledger.SegmentFailed
			seg.Detail = res.Err.Error()
			failed++
		} else {
			aligned++
		}
		if err := store.RecordSegment(runCtx, run.ID, seg); err != nil {
			runLogger.Warn("record segment outcome", logging.Error(err))
		}
	}

	client, err := pyalign.New(cfg.Aligner.Binary, cfg.Aligner.Timeout, pyalign.WithOutputEncoding(cfg.Aligner.OutputEncoding))
	if err != nil {
		finishRun(store, runLogger, run.ID, ledger.RunFailed, "", err.Error())
		return services.Wrap(services.ErrConfiguration, "align", "configure aligner", cfg.Aligner.Binary, err)
	}
	driver, err := align.New(client, cfg.ScratchDir(),
		align.WithLogger(logger),
		align.WithObserver(observer),
		align.WithTranscriptEncoding(cfg.Files.OutputEncoding),
	)
	if err != nil {
		finishRun(store, runLogger, run.ID, ledger.RunFailed, "", err.Error())
		return err
	}

	pairs, err := driver.AlignTiers(runCtx, sources, audioPath)
	if err != nil {
		finishRun(store, runLogger, run.ID, ledger.RunFailed, "", err.Error())
		return err
	}

	result := align.File(pairs, cfg.Files.OutputEncoding)
	if err := writeTabular(cmd.OutOrStdout(), outPath, result, cfg.Files.OutputEncoding); err != nil {
		finishRun(store, runLogger, run.ID, ledger.RunFailed, "", err.Error())
		return err
	}

	status := ledger.RunCompleted
	message := ""
	if failed > 0 {
		status = ledger.RunCompletedWithErrors
		message = fmt.Sprintf("%d of %d segments failed", failed, aligned+failed)
	}
	finishRun(store, runLogger, run.ID, status, outPath, message)

	runLogger.Info("alignment run finished",
		logging.String("status", string(status)),
		logging.Int("segments", aligned+failed),
		logging.Int("failed", failed),
	)
	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	}
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s; error labels mark them in the output (run %s)\n", message, run.ID)
	}
	return nil
}

// finishRun records the run outcome on a fresh context so a cancelled
// command still leaves a truthful ledger row.
func finishRun(store *ledger.Store, logger *slog.Logger, id string, status ledger.RunStatus, outputPath, message string) {
	if err := store.FinishRun(context.Background(), id, status, outputPath, message); err != nil {
		logger.Warn("finish ledger run", logging.Error(err))
	}
}
