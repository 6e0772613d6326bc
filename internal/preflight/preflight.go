package preflight

import (
	"context"

	"wpmeta/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSourceTree("Source tree", cfg.Paths.SourceDir, cfg.Build.ManifestName),
		CheckWritableTarget("Staging directory", cfg.Paths.StagingDir),
		CheckStagingLock(ctx, "Staging lock", cfg.Paths.StagingDir),
	}
	if cfg.Ledger.Enabled {
		results = append(results, CheckWritableTarget("Ledger", cfg.Ledger.Path))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritableTarget("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
