package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hopper/internal/journal"
	"hopper/internal/monitor"
)

func renderSummary(w io.Writer, summary *monitor.Summary) {
	header := fmt.Sprintf("Cycle %s", summary.CycleID)
	if summary.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "  scanned %d, merged %d, unstable %d, failed %d in %s\n",
		summary.Scanned,
		summary.MergedCount(),
		summary.UnstableCount(),
		summary.FailedCount(),
		summary.Duration.Round(time.Millisecond),
	)

	if len(summary.Records) == 0 {
		return
	}
	table := renderTable(
		[]string{"File", "Outcome", "Rows", "Keys", "Detail"},
		buildSummaryRows(summary.Records),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
	fmt.Fprintln(w, table)
}

func buildSummaryRows(records []*journal.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			filepath.Base(rec.SourcePath),
			string(rec.Outcome),
			strconv.FormatInt(rec.RowCount, 10),
			strconv.FormatInt(rec.KeyCount, 10),
			recordDetail(rec),
		})
	}
	return rows
}

// recordDetail folds the free-form detail and any dropped columns into one
// table cell.
func recordDetail(rec *journal.Record) string {
	parts := make([]string, 0, 2)
	if detail := strings.TrimSpace(rec.Detail); detail != "" {
		parts = append(parts, detail)
	}
	if len(rec.DroppedColumns) > 0 {
		parts = append(parts, "dropped: "+strings.Join(rec.DroppedColumns, ", "))
	}
	return strings.Join(parts, "; ")
}
