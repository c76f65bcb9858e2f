package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"loom/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWorkspace := filepath.Join(tempHome, ".local", "share", "loom")
	if cfg.Paths.Workspace != wantWorkspace {
		t.Fatalf("unexpected workspace: got %q want %q", cfg.Paths.Workspace, wantWorkspace)
	}
	if cfg.Paths.LogDir != filepath.Join(wantWorkspace, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Aligner.Binary != "pyalign" {
		t.Fatalf("unexpected aligner binary: %q", cfg.Aligner.Binary)
	}
	if cfg.Aligner.Timeout != config.Default().Aligner.Timeout {
		t.Fatalf("unexpected aligner timeout: %d", cfg.Aligner.Timeout)
	}
	if cfg.Dictionary.MainPath != "/opt/p2fa/model/dict" {
		t.Fatalf("unexpected main dictionary: %q", cfg.Dictionary.MainPath)
	}
	if cfg.Dictionary.LocalName != "localdict.txt" {
		t.Fatalf("unexpected local dictionary name: %q", cfg.Dictionary.LocalName)
	}
	if !cfg.Dictionary.Check {
		t.Fatal("expected dictionary check enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.Workspace, cfg.ScratchDir(), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "loom.toml")

	type payload struct {
		Aligner struct {
			Binary  string `toml:"binary"`
			Timeout int    `toml:"timeout"`
		} `toml:"aligner"`
		Dictionary struct {
			MainPath string `toml:"main_path"`
		} `toml:"dictionary"`
		Files struct {
			InputEncoding string `toml:"input_encoding"`
		} `toml:"files"`
	}
	custom := payload{}
	custom.Aligner.Binary = "/usr/local/bin/pyalign"
	custom.Aligner.Timeout = 90
	custom.Dictionary.MainPath = filepath.Join(tempDir, "dict")
	custom.Files.InputEncoding = "iso-8859-1"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Aligner.Binary != "/usr/local/bin/pyalign" {
		t.Fatalf("expected aligner binary from file, got %q", cfg.Aligner.Binary)
	}
	if cfg.Aligner.Timeout != 90 {
		t.Fatalf("expected aligner timeout 90, got %d", cfg.Aligner.Timeout)
	}
	if cfg.Dictionary.MainPath != filepath.Join(tempDir, "dict") {
		t.Fatalf("unexpected main dictionary: %q", cfg.Dictionary.MainPath)
	}
	if cfg.Files.InputEncoding != "iso-8859-1" {
		t.Fatalf("unexpected input encoding: %q", cfg.Files.InputEncoding)
	}
	if cfg.Files.OutputEncoding != config.Default().Files.OutputEncoding {
		t.Fatalf("expected default output encoding, got %q", cfg.Files.OutputEncoding)
	}
}

func TestEnvVarsOverrideConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "loom.toml")

	type payload struct {
		Aligner struct {
			Binary string `toml:"binary"`
		} `toml:"aligner"`
		Dictionary struct {
			MainPath string `toml:"main_path"`
		} `toml:"dictionary"`
	}
	custom := payload{}
	custom.Aligner.Binary = "file-aligner"
	custom.Dictionary.MainPath = "/file/dict"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("LOOM_ALIGNER", "env-aligner")
	t.Setenv("LOOM_DICTIONARY", "/env/dict")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Aligner.Binary != "env-aligner" {
		t.Errorf("expected aligner from env, got %q", cfg.Aligner.Binary)
	}
	if cfg.Dictionary.MainPath != "/env/dict" {
		t.Errorf("expected dictionary from env, got %q", cfg.Dictionary.MainPath)
	}
}

func TestLocalDictionaryPath(t *testing.T) {
	cfg := config.Default()
	got := cfg.LocalDictionaryPath("/data/session1/interview.txt")
	want := filepath.Join("/data/session1", "localdict.txt")
	if got != want {
		t.Fatalf("unexpected local dictionary path: got %q want %q", got, want)
	}

	cfg.Dictionary.LocalName = ""
	if got := cfg.LocalDictionaryPath("/data/session1/interview.txt"); got != "" {
		t.Fatalf("expected empty path when local_name unset, got %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "/opt/p2fa/model/dict") {
		t.Fatalf("sample config missing dictionary default: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Aligner.Binary != "pyalign" {
		t.Fatalf("expected sample aligner binary pyalign, got %q", cfg.Aligner.Binary)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Workspace = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty workspace")
	}

	cfg = config.Default()
	cfg.Aligner.Binary = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty aligner binary")
	}

	cfg = config.Default()
	cfg.Aligner.Timeout = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	cfg = config.Default()
	cfg.Dictionary.MainPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty main dictionary path")
	}

	cfg = config.Default()
	cfg.Dictionary.LocalName = "nested/dict.txt"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for local dictionary path with separator")
	}

	cfg = config.Default()
	cfg.Files.InputEncoding = "not-a-real-charset"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown input encoding")
	}

	cfg = config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "trace"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
