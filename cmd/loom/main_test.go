package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
	"loom/internal/ledger"
	"loom/internal/services"
	"loom/internal/testsupport"
	"loom/internal/timeline"
)

// alignStub writes a minimal aligner output grid covering the requested
// window: one phone and one word spanning [t1, t2]. Argument order is
// -b t1 -e t2 -c channel audio transcript out.
const alignStub = `#!/bin/sh
cat > "$9" <<EOF
File type = "ooTextFile"
Object class = "TextGrid"

xmin = $2
xmax = $4
tiers? <exists>
size = 2
item []:
    item [1]:
        class = "IntervalTier"
        name = "phone"
        xmin = $2
        xmax = $4
        intervals: size = 1
        intervals [1]:
            xmin = $2
            xmax = $4
            text = "AH"
    item [2]:
        class = "IntervalTier"
        name = "word"
        xmin = $2
        xmax = $4
        intervals: size = 1
        intervals [1]:
            xmin = $2
            xmax = $4
            text = "HELLO"
EOF
exit 0
`

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	content := fmt.Sprintf(`[paths]
workspace = %q
log_dir = %q

[aligner]
binary = %q
timeout = %d

[dictionary]
main_path = %q
check = %v
`,
		cfg.Paths.Workspace,
		cfg.Paths.LogDir,
		cfg.Aligner.Binary,
		cfg.Aligner.Timeout,
		cfg.Dictionary.MainPath,
		cfg.Dictionary.Check,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// alignFixture lays out audio, transcript, and config for an align run and
// returns the config path plus the input paths.
func alignFixture(t *testing.T, opts ...testsupport.ConfigOption) (cfg *config.Config, configPath, audioPath, gridPath string) {
	t.Helper()
	cfg = testsupport.NewConfig(t, opts...)
	configPath = writeTestConfig(t, cfg)

	base := testsupport.BaseDir(cfg)
	audioPath = filepath.Join(base, "session.wav")
	testsupport.WriteFile(t, audioPath, 256)

	gridPath = filepath.Join(base, "session.TextGrid")
	grid := testsupport.UtteranceGrid("utterance", 0, 2.5,
		timeline.Label{Text: "hello", T1: 0, T2: 1},
		timeline.Label{Text: "world", T1: 1, T2: 2},
	)
	testsupport.WriteTextGrid(t, gridPath, grid)
	return cfg, configPath, audioPath, gridPath
}

func TestCLIAlignWritesTabularOutput(t *testing.T) {
	cfg, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))
	outPath := filepath.Join(testsupport.BaseDir(cfg), "session.align")

	stdout, _, err := runCLI(t, []string{"align", audioPath, gridPath, "-o", outPath}, configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if !strings.Contains(stdout, "Wrote "+outPath) {
		t.Fatalf("missing confirmation, got %q", stdout)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"#### phone\tinterval\t0\t2.5\n",
		"#### word\tinterval\t0\t2.5\n",
		"0\t1\tAH\n",
		"1\t2\tHELLO\n",
		"2\t2.5\t\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIAlignDefaultsToStdout(t *testing.T) {
	_, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))

	stdout, _, err := runCLI(t, []string{"align", audioPath, gridPath}, configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if !strings.HasPrefix(stdout, "#### phone\t") {
		t.Fatalf("stdout does not start with the phone tier header: %q", stdout)
	}
	if strings.Contains(stdout, "Wrote") {
		t.Fatalf("stdout mixes labels with status text: %q", stdout)
	}
}

func TestCLIAlignFailedSegmentsStayInOutput(t *testing.T) {
	cfg, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner("#!/bin/sh\nexit 1\n"))
	outPath := filepath.Join(testsupport.BaseDir(cfg), "session.align")

	stdout, stderr, err := runCLI(t, []string{"align", audioPath, gridPath, "-o", outPath}, configPath)
	if err != nil {
		t.Fatalf("per-segment failures must not fail the run: %v", err)
	}
	if !strings.Contains(stderr, "2 of 2 segments failed") {
		t.Fatalf("stderr missing failure summary: %q", stderr)
	}
	if !strings.Contains(stdout, "Wrote") {
		t.Fatalf("output file not confirmed: %q", stdout)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), timeline.ErrorMarker) {
		t.Fatalf("output missing error labels:\n%s", data)
	}

	store, err := ledger.OpenReadOnly(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer store.Close()
	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.RunCompletedWithErrors {
		t.Fatalf("unexpected ledger state: %+v", runs)
	}
	failures, err := store.FailedSegments(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("failed segments: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failed segments, got %d", len(failures))
	}
}

func TestCLIAlignVocabularyGate(t *testing.T) {
	_, configPath, audioPath, gridPath := alignFixture(t,
		testsupport.WithStubbedAligner(alignStub),
		testsupport.WithMainDictionary("HELLO"),
	)

	_, _, err := runCLI(t, []string{"align", audioPath, gridPath}, configPath)
	if err == nil {
		t.Fatal("expected vocabulary gate to fail")
	}
	if got := services.ExitCode(err); got != services.ExitVocabulary {
		t.Fatalf("exit code = %d, want %d (%v)", got, services.ExitVocabulary, err)
	}
	if !strings.Contains(err.Error(), "WORLD") {
		t.Fatalf("error does not name the missing word: %v", err)
	}

	// The gate is advisory when explicitly skipped.
	if _, _, err := runCLI(t, []string{"align", audioPath, gridPath, "--no-dict-check"}, configPath); err != nil {
		t.Fatalf("align --no-dict-check: %v", err)
	}
}

func TestCLIAlignRecordsRunInLedger(t *testing.T) {
	cfg, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))
	outPath := filepath.Join(testsupport.BaseDir(cfg), "session.align")

	if _, _, err := runCLI(t, []string{"align", audioPath, gridPath, "-o", outPath, "--tier", "utterance"}, configPath); err != nil {
		t.Fatalf("align: %v", err)
	}

	store, err := ledger.OpenReadOnly(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer store.Close()
	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != ledger.RunCompleted {
		t.Fatalf("run status = %s, want %s", run.Status, ledger.RunCompleted)
	}
	if run.OutputPath != outPath {
		t.Fatalf("run output = %q, want %q", run.OutputPath, outPath)
	}
	if len(run.Tiers) != 1 || run.Tiers[0] != "utterance" {
		t.Fatalf("run tiers = %v", run.Tiers)
	}
	segments, err := store.Segments(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segment rows, got %d", len(segments))
	}
	for _, seg := range segments {
		if seg.Status != ledger.SegmentAligned {
			t.Fatalf("segment %d status = %s", seg.Index, seg.Status)
		}
	}
}

func TestCLIAlignMissingAudioExitsConfiguration(t *testing.T) {
	cfg, configPath, _, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))

	missing := filepath.Join(testsupport.BaseDir(cfg), "absent.wav")
	_, _, err := runCLI(t, []string{"align", missing, gridPath}, configPath)
	if err == nil {
		t.Fatal("expected missing audio to fail")
	}
	if got := services.ExitCode(err); got != services.ExitConfiguration {
		t.Fatalf("exit code = %d, want %d (%v)", got, services.ExitConfiguration, err)
	}
}

func TestCLIAlignUnknownTierExitsConfiguration(t *testing.T) {
	_, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))

	_, _, err := runCLI(t, []string{"align", audioPath, gridPath, "--tier", "nope"}, configPath)
	if err == nil {
		t.Fatal("expected unknown tier to fail")
	}
	if got := services.ExitCode(err); got != services.ExitConfiguration {
		t.Fatalf("exit code = %d, want %d (%v)", got, services.ExitConfiguration, err)
	}
	if !strings.Contains(err.Error(), "utterance") {
		t.Fatalf("error does not list available tiers: %v", err)
	}
}

func TestCLIRunsListAndShow(t *testing.T) {
	cfg, configPath, audioPath, gridPath := alignFixture(t, testsupport.WithStubbedAligner(alignStub))

	if _, _, err := runCLI(t, []string{"align", audioPath, gridPath, "-o", filepath.Join(testsupport.BaseDir(cfg), "out.align")}, configPath); err != nil {
		t.Fatalf("align: %v", err)
	}

	store, err := ledger.OpenReadOnly(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	store.Close()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	runID := runs[0].ID

	stdout, _, err := runCLI(t, []string{"runs", "list"}, configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	if !strings.Contains(stdout, shortRunID(runID)) || !strings.Contains(stdout, "session.wav") {
		t.Fatalf("runs list output missing run row: %q", stdout)
	}
	if !strings.Contains(stdout, "Completed") {
		t.Fatalf("runs list output missing status: %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"runs", "show", shortRunID(runID)}, configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	for _, want := range []string{"Run:", runID, "Audio:", "Status:", "Aligned"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("runs show output missing %q: %q", want, stdout)
		}
	}

	_, _, err = runCLI(t, []string{"runs", "show", "ffffffff"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "no run matches") {
		t.Fatalf("expected unknown run error, got %v", err)
	}
}

func TestCLIRunsListEmptyLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"runs", "list"}, configPath)
	if err == nil {
		t.Fatal("expected missing ledger error")
	}
	if !strings.Contains(err.Error(), "no run ledger") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLIUsageErrorsExitConfiguration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	cases := [][]string{
		{"align", "only-one-arg"},
		{"split"},
		{"runs", "list", "--bogus"},
		{"definitely-not-a-command"},
	}
	for _, args := range cases {
		_, _, err := runCLI(t, args, configPath)
		if err == nil {
			t.Fatalf("%v: expected usage error", args)
		}
		if got := services.ExitCode(err); got != services.ExitConfiguration {
			t.Fatalf("%v: exit code = %d, want %d (%v)", args, got, services.ExitConfiguration, err)
		}
	}
}

func TestCLIHelpRunsWithoutConfig(t *testing.T) {
	stdout, _, err := runCLI(t, nil, "")
	if err != nil {
		t.Fatalf("bare invocation: %v", err)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Fatalf("expected help output, got %q", stdout)
	}
}
