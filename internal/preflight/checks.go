package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"loom/internal/config"
	"loom/internal/deps"
	"loom/internal/textenc"
)

// CheckAlignerBinary reports whether the configured aligner command resolves
// to an executable, showing the resolved path when it does.
func CheckAlignerBinary(command string) Result {
	const name = "Aligner binary"

	status := deps.CheckAligner(command)
	if status.Available {
		return Result{Name: name, Passed: true, Detail: status.Command}
	}
	return Result{Name: name, Detail: status.Detail}
}

// CheckFileReadable verifies that the file exists and is readable.
func CheckFileReadable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable. A missing directory still passes when its nearest
// existing ancestor is writable, since the workspace is created on first
// use.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			ancestor := nearestExistingDir(path)
			if accErr := unix.Access(ancestor, unix.W_OK|unix.X_OK); accErr != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, accErr)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func nearestExistingDir(path string) string {
	dir := filepath.Dir(path)
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// CheckEncodings verifies every configured character encoding resolves to a
// known codec.
func CheckEncodings(cfg *config.Config) Result {
	const name = "Encodings"

	entries := []struct{ key, value string }{
		{"files.input_encoding", cfg.Files.InputEncoding},
		{"files.output_encoding", cfg.Files.OutputEncoding},
		{"dictionary.encoding", cfg.Dictionary.Encoding},
		{"aligner.output_encoding", cfg.Aligner.OutputEncoding},
	}
	var bad []string
	for _, entry := range entries {
		if strings.TrimSpace(entry.value) == "" {
			continue
		}
		if _, err := textenc.Lookup(entry.value); err != nil {
			bad = append(bad, fmt.Sprintf("%s=%q", entry.key, entry.value))
		}
	}
	if len(bad) > 0 {
		return Result{Name: name, Detail: "unresolvable: " + strings.Join(bad, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: "all configured encodings resolve"}
}
