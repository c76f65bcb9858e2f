// Package deps resolves the external aligner binary loom shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Status reports the availability of the aligner binary.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// CheckAligner reports the aligner binary loom will execute. Resolution
// follows PATH the way the shell does; a command containing a separator is
// used as given. The returned Command holds the resolved absolute path so
// diagnostic output shows which installation won.
func CheckAligner(command string) Status {
	result := Status{
		Name:        "Aligner",
		Description: "Forced aligner invoked per segment",
	}

	binary := strings.TrimSpace(command)
	if binary == "" {
		result.Detail = "command not configured"
		return result
	}
	result.Command = binary

	resolved, err := exec.LookPath(binary)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", binary)
		return result
	}
	if abs, absErr := filepath.Abs(resolved); absErr == nil {
		resolved = abs
	}

	result.Command = resolved
	result.Available = true
	return result
}
