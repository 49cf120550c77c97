package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/master"
	"hopper/internal/preflight"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, readiness, master dataset, and journal health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection(out, "Configuration", colorize)
			if cctx.configExists {
				fmt.Fprintln(out, renderStatusLine("Config file", statusOK, cctx.configPath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config file", statusWarn, "not found, defaults in use", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Key column", statusInfo, cfg.Ingest.KeyColumn, colorize))
			fmt.Fprintln(out, renderStatusLine("Prune columns", statusInfo, yesNo(cfg.Ingest.PruneObsoleteColumns), colorize))
			fmt.Fprintln(out, renderStatusLine("Watch directory", statusInfo, cfg.Paths.WatchDir, colorize))

			printSection(out, "Preflight", colorize)
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			printSection(out, "Master dataset", colorize)
			printMasterStatus(out, cfg, colorize)

			printSection(out, "Journal", colorize)
			if err := printJournalStatus(cmd, out, cfg, colorize); err != nil {
				return err
			}
			return nil
		},
	}
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func printMasterStatus(out io.Writer, cfg *config.Config, colorize bool) {
	if _, err := os.Stat(cfg.Paths.MetadataFile); os.IsNotExist(err) {
		fmt.Fprintln(out, renderStatusLine("Master file", statusInfo, "not created yet", colorize))
		return
	}

	store, err := master.NewStore(cfg, logging.NewNop())
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Master file", statusError, err.Error(), colorize))
		return
	}
	meta, err := store.ReadMetadata()
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Metadata", statusError, err.Error(), colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Master file", statusOK, cfg.Paths.MasterFile, colorize))
	fmt.Fprintln(out, renderStatusLine("Last updated", statusInfo, meta.LastUpdated, colorize))
	fmt.Fprintln(out, renderStatusLine("Rows", statusInfo, fmt.Sprintf("%d", meta.RowCount), colorize))
	fmt.Fprintln(out, renderStatusLine("Columns", statusInfo, fmt.Sprintf("%d (%s)", meta.ColumnCount, strings.Join(meta.Columns, ", ")), colorize))
}

func printJournalStatus(cmd *cobra.Command, out io.Writer, cfg *config.Config, colorize bool) error {
	if !cfg.Journal.Enabled {
		fmt.Fprintln(out, renderStatusLine("Journal", statusWarn, "disabled", colorize))
		return nil
	}

	store, err := journal.Open(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Journal", statusError, err.Error(), colorize))
		return nil
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderStatusLine("Journal", statusOK, cfg.JournalPath(), colorize))
	fmt.Fprintln(out, renderStatusLine("Outcomes", statusInfo, formatOutcomeStats(stats), colorize))

	cycleID, records, err := store.LatestCycle(cmd.Context())
	if err != nil {
		return err
	}
	if cycleID == "" {
		fmt.Fprintln(out, renderStatusLine("Last cycle", statusInfo, "none recorded", colorize))
		return nil
	}
	fmt.Fprintln(out, renderStatusLine("Last cycle", statusInfo, fmt.Sprintf("%s (%d files)", cycleID, len(records)), colorize))
	return nil
}

func formatOutcomeStats(stats map[ingest.Outcome]int) string {
	ordered := []ingest.Outcome{
		ingest.OutcomeMerged,
		ingest.OutcomeUnstable,
		ingest.OutcomeInvalid,
		ingest.OutcomeLockTimeout,
		ingest.OutcomePersistFailed,
		ingest.OutcomeArchiveFailed,
	}
	parts := make([]string, 0, len(ordered))
	for _, outcome := range ordered {
		if count := stats[outcome]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", outcome, count))
		}
	}
	if len(parts) == 0 {
		return "no records"
	}
	return strings.Join(parts, ", ")
}
