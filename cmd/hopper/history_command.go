package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"hopper/internal/ingest"
	"hopper/internal/journal"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int
	var outcomeFilter string
	var cycleFilter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded ingest outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is disabled; enable [journal] in the config to record history")
				return nil
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), journal.ListOptions{
				Limit:   limit,
				Outcome: ingest.Outcome(outcomeFilter),
				CycleID: cycleFilter,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ingest records")
				return nil
			}
			table := renderTable(
				[]string{"Time", "File", "Outcome", "Rows", "Keys", "Detail"},
				buildHistoryRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to show (0 uses the journal default)")
	cmd.Flags().StringVar(&outcomeFilter, "outcome", "", "Filter by outcome (merged, unstable, invalid, lock_timeout, persist_failed, archive_failed)")
	cmd.Flags().StringVar(&cycleFilter, "cycle", "", "Filter by cycle ID")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}

func buildHistoryRows(records []*journal.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(rec.SourcePath),
			string(rec.Outcome),
			strconv.FormatInt(rec.RowCount, 10),
			strconv.FormatInt(rec.KeyCount, 10),
			recordDetail(rec),
		})
	}
	return rows
}
