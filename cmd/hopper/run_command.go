package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/monitor"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the watch directory once and merge every stable file",
		Long: "Run performs a single ingest cycle: enumerate candidate files, wait out\n" +
			"the checksum stability window, then validate, merge, persist, and archive\n" +
			"each stable file in turn. Per-file failures are journaled and logged but\n" +
			"leave the file in place for the next invocation; only a failure of the\n" +
			"cycle itself yields a non-zero exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			// Keep stdout clean for the summary; logs go to stderr and file.
			logger, err := logging.New(logging.Options{
				Level:            cfg.Logging.Level,
				Format:           cfg.Logging.Format,
				OutputPaths:      []string{"stderr", filepath.Join(cfg.Paths.LogDir, "hopper-run.log")},
				ErrorOutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			mon, err := monitor.New(cfg, logger, store)
			if err != nil {
				return err
			}

			summary, err := mon.RunCycle(cmd.Context(), dryRun)
			if summary != nil {
				renderSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and report merges without writing anything")
	return cmd
}
