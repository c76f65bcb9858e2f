package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckAlignerResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, executableName("pyalign"))
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := CheckAligner("pyalign")
	if !status.Available {
		t.Fatalf("expected aligner to resolve, got detail %q", status.Detail)
	}
	if status.Command != stub {
		t.Fatalf("expected resolved path %q, got %q", stub, status.Command)
	}
}

func TestCheckAlignerExplicitPath(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, executableName("my-aligner"))
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	status := CheckAligner(stub)
	if !status.Available {
		t.Fatalf("expected explicit path to resolve, got detail %q", status.Detail)
	}
	if status.Command != stub {
		t.Fatalf("expected command %q, got %q", stub, status.Command)
	}
}

func TestCheckAlignerMissing(t *testing.T) {
	t.Setenv("PATH", "")

	status := CheckAligner("pyalign")
	if status.Available {
		t.Fatal("expected missing aligner to be unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message for missing aligner")
	}
}

func TestCheckAlignerUnconfigured(t *testing.T) {
	status := CheckAligner("   ")
	if status.Available {
		t.Fatal("expected blank command to be unavailable")
	}
	if status.Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", status.Detail)
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
