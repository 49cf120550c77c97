package merge

import (
	"fmt"
	"log/slog"
	"sort"

	"hopper/internal/config"
	"hopper/internal/dataset"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// Result is one merge outcome. Data is the dataset to persist; the remaining
// fields feed logging, the journal, and the archive summary.
type Result struct {
	Data           dataset.Dataset
	NewKeys        []string
	ReplacedRows   int
	AddedColumns   []string
	DroppedColumns []string
}

// Engine folds validated batches into the master dataset with upsert
// semantics. The computation is deterministic and leaves both inputs
// untouched; persisting the result is the caller's job.
type Engine struct {
	keyColumn string
	prune     bool
	logger    *slog.Logger
}

func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		keyColumn: cfg.Ingest.KeyColumn,
		prune:     cfg.Ingest.PruneObsoleteColumns,
		logger:    logging.NewComponentLogger(logger, "merge"),
	}
}

// Apply merges one batch into the master dataset:
//
//  1. Columns become the sorted union of both column sets.
//  2. Master rows whose key appears in the batch are replaced by the batch
//     rows for that key. All other master rows are retained, master rows
//     first and batch rows after, each in their original order.
//  3. When pruning is enabled, a column the master had but the batch lacks
//     is dropped from the whole dataset if every merged row keyed by the
//     batch is null in it. Retained rows may still hold values there; the
//     drop discards them.
func (e *Engine) Apply(base, incoming dataset.Dataset) (Result, error) {
	if !incoming.HasColumn(e.keyColumn) {
		return Result{}, ingest.Wrap(ingest.ErrValidation, "merge", "apply",
			fmt.Sprintf("batch missing key column %q", e.keyColumn), nil)
	}
	if len(base.Rows) > 0 && !base.HasColumn(e.keyColumn) {
		return Result{}, ingest.Wrap(ingest.ErrPersistence, "merge", "apply",
			fmt.Sprintf("master dataset missing key column %q", e.keyColumn), nil)
	}

	newKeys := incoming.KeyValues(e.keyColumn)
	newKeySet := make(map[string]struct{}, len(newKeys))
	for _, key := range newKeys {
		newKeySet[key] = struct{}{}
	}

	// The batch always carries the key column, so it can never be obsolete.
	obsolete := columnsOnlyIn(base.Columns, incoming.Columns)
	added := columnsOnlyIn(incoming.Columns, base.Columns)

	allColumns := dataset.SortedColumnUnion(base.Columns, incoming.Columns)
	master := base.Reindex(allColumns)
	batch := incoming.Reindex(allColumns)

	merged := dataset.Dataset{
		Columns: allColumns,
		Rows:    make([]dataset.Row, 0, len(master.Rows)+len(batch.Rows)),
	}
	replaced := 0
	for _, row := range master.Rows {
		if _, ok := newKeySet[row.Value(e.keyColumn)]; ok {
			replaced++
			continue
		}
		merged.Rows = append(merged.Rows, row)
	}
	merged.Rows = append(merged.Rows, batch.Rows...)

	var dropped []string
	if e.prune {
		for _, column := range obsolete {
			if !nullForAllBatchRows(merged, e.keyColumn, newKeySet, column) {
				continue
			}
			dropped = append(dropped, column)
			e.logger.Info("dropped obsolete column", logging.String("column", column))
		}
		if len(dropped) > 0 {
			merged = merged.Reindex(withoutColumns(allColumns, dropped))
		}
	}

	e.logger.Debug("merge computed",
		logging.Int("new_keys", len(newKeys)),
		logging.Int("replaced_rows", replaced),
		logging.Int("row_count", len(merged.Rows)),
		logging.Int("column_count", len(merged.Columns)),
	)

	return Result{
		Data:           merged,
		NewKeys:        newKeys,
		ReplacedRows:   replaced,
		AddedColumns:   added,
		DroppedColumns: dropped,
	}, nil
}

// columnsOnlyIn returns the columns of a that b lacks, sorted.
func columnsOnlyIn(a, b []string) []string {
	present := make(map[string]struct{}, len(b))
	for _, column := range b {
		present[column] = struct{}{}
	}
	var only []string
	for _, column := range a {
		if _, ok := present[column]; ok {
			continue
		}
		only = append(only, column)
	}
	sort.Strings(only)
	return only
}

func nullForAllBatchRows(d dataset.Dataset, keyColumn string, keys map[string]struct{}, column string) bool {
	for _, row := range d.Rows {
		if _, ok := keys[row.Value(keyColumn)]; !ok {
			continue
		}
		if !row.IsNull(column) {
			return false
		}
	}
	return true
}

func withoutColumns(columns, drop []string) []string {
	dropSet := make(map[string]struct{}, len(drop))
	for _, column := range drop {
		dropSet[column] = struct{}{}
	}
	kept := make([]string, 0, len(columns)-len(drop))
	for _, column := range columns {
		if _, ok := dropSet[column]; ok {
			continue
		}
		kept = append(kept, column)
	}
	return kept
}
