package preflight

import (
	"context"

	"hopper/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The journal check is only run when the journal is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Watch directory", cfg.Paths.WatchDir))
	results = append(results, CheckDirectoryAccess("Archive directory", cfg.Paths.ArchiveDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckFileWritable("Master file", cfg.Paths.MasterFile))
	results = append(results, CheckFileWritable("Metadata file", cfg.Paths.MetadataFile))
	results = append(results, CheckCSVSettings(cfg))

	if cfg.Journal.Enabled {
		results = append(results, CheckJournal(ctx, cfg))
	}

	return results
}

// Failed reports whether any check in the set did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
