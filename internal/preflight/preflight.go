package preflight

import (
	"context"

	"mangarchive/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Warning marks a failure that does not prevent a run.
	Warning bool
}

// RunAll executes the offline checks for cfg: directory access and
// external program availability.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	return append(results, CheckSystemDeps(ctx, cfg)...)
}

// Failed reports whether any non-warning check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Warning {
			return true
		}
	}
	return false
}
