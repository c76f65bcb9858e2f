package preflight

import (
	"loom/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the preflight checks for the given config in display
// order.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckAlignerBinary(cfg.Aligner.Binary),
		CheckFileReadable("Main dictionary", cfg.Dictionary.MainPath),
		CheckDirectoryAccess("Workspace", cfg.Paths.Workspace),
		CheckEncodings(cfg),
	}
	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
