package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. The main
// dictionary points at a real file so the vocabulary gate can run.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Workspace = filepath.Join(base, "workspace")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Dictionary.MainPath = filepath.Join(base, "dict")
	WriteDictionary(t, cfgVal.Dictionary.MainPath, "HELLO", "WORLD")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMainDictionary replaces the main dictionary contents with the given
// headwords.
func WithMainDictionary(words ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteDictionary(b.t, b.cfg.Dictionary.MainPath, words...)
	}
}

// WithoutDictionaryCheck disables the vocabulary gate on the test config.
func WithoutDictionaryCheck() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dictionary.Check = false
	}
}

// WithStubbedAligner writes a stub aligner executable and prepends its
// directory to PATH. An empty script installs one that exits 0 without
// producing output. The stub receives the full invocation argument order
// (-b t1 -e t2 -c channel audio transcript out), so "$9" is the output path.
func WithStubbedAligner(script string) ConfigOption {
	return func(b *configBuilder) {
		if script == "" {
			script = "#!/bin/sh\nexit 0\n"
		}
		if !strings.HasSuffix(script, "\n") {
			script += "\n"
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, b.cfg.Aligner.Binary)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", b.cfg.Aligner.Binary, err)
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Workspace)
}
