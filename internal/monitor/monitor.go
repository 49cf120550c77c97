package monitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hopper/internal/archive"
	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/intake"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/master"
	"hopper/internal/merge"
	"hopper/internal/stability"
)

// Monitor drives one ingest cycle end to end: scan the watch directory,
// keep only stable files, validate each, merge it into the master under the
// lock, and archive the source. Per-file failures are isolated; the cycle
// carries on with the remaining files.
type Monitor struct {
	cfg      *config.Config
	logger   *slog.Logger
	detector *stability.Detector
	loader   *intake.Loader
	engine   *merge.Engine
	lock     *master.Lock
	store    *master.Store
	archiver *archive.Archiver
	journal  *journal.Store
	now      func() time.Time
}

// New wires a monitor from configuration. journalStore may be nil when the
// journal is disabled.
func New(cfg *config.Config, logger *slog.Logger, journalStore *journal.Store) (*Monitor, error) {
	loader, err := intake.NewLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := master.NewStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "monitor"),
		detector: stability.NewDetector(cfg, logger),
		loader:   loader,
		engine:   merge.NewEngine(cfg, logger),
		lock:     master.NewLock(cfg, logger),
		store:    store,
		archiver: archive.NewArchiver(cfg, logger),
		journal:  journalStore,
		now:      time.Now,
	}, nil
}

// RunCycle performs one scan-and-merge pass. In dry-run mode the merge is
// computed and reported but nothing is written: no master replacement, no
// archive move, no journal rows. The returned summary covers every file the
// cycle looked at, including the ones it skipped.
func (m *Monitor) RunCycle(ctx context.Context, dryRun bool) (*Summary, error) {
	cycleID := uuid.NewString()
	ctx = ingest.WithCycleID(ctx, cycleID)
	logger := logging.WithContext(ctx, m.logger)
	started := m.now()

	summary := &Summary{CycleID: cycleID, DryRun: dryRun, Started: started}
	logger.Info("ingest cycle started", logging.Bool("dry_run", dryRun))

	paths, err := m.scan()
	if err != nil {
		logging.ErrorWithContext(logger, "watch directory scan failed", "scan_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check watch_dir exists and is readable"),
		)
		return summary, err
	}
	summary.Scanned = len(paths)
	if len(paths) == 0 {
		summary.Duration = m.now().Sub(started)
		logger.Info("ingest cycle complete", m.completionArgs(summary)...)
		return summary, nil
	}

	stable, skips, err := m.detector.FilterStable(ctx, paths)
	if err != nil {
		return summary, err
	}

	for _, skip := range skips {
		rec := &journal.Record{
			CycleID:    cycleID,
			SourcePath: skip.Path,
			Outcome:    ingest.OutcomeUnstable,
			Detail:     skip.Reason,
		}
		summary.Records = append(summary.Records, rec)
		m.appendJournal(ctx, logger, rec, dryRun)
	}

	for _, candidate := range stable {
		if err := ctx.Err(); err != nil {
			summary.Duration = m.now().Sub(started)
			return summary, err
		}
		rec := m.processFile(ctx, candidate, dryRun)
		summary.Records = append(summary.Records, rec)
		m.appendJournal(ctx, logger, rec, dryRun)
	}

	summary.Duration = m.now().Sub(started)
	logger.Info("ingest cycle complete", m.completionArgs(summary)...)
	return summary, nil
}

func (m *Monitor) completionArgs(summary *Summary) []any {
	return logging.Args(
		logging.Int("scanned", summary.Scanned),
		logging.Int("merged", summary.MergedCount()),
		logging.Int("unstable", summary.UnstableCount()),
		logging.Int("failed", summary.FailedCount()),
		logging.Duration("duration", summary.Duration),
	)
}

func (m *Monitor) scan() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.Paths.WatchDir)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrChecksum, "monitor", "scan", "watch directory unreadable", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !m.cfg.MatchesExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(m.cfg.Paths.WatchDir, entry.Name()))
	}
	return paths, nil
}

func (m *Monitor) processFile(ctx context.Context, candidate stability.Candidate, dryRun bool) *journal.Record {
	ctx = ingest.WithSourceFile(ctx, candidate.Path)
	logger := logging.WithContext(ctx, m.logger)
	start := m.now()

	cycleID, _ := ingest.CycleIDFromContext(ctx)
	rec := &journal.Record{
		CycleID:    cycleID,
		SourcePath: candidate.Path,
		Checksum:   candidate.Checksum,
	}
	logger.Info("processing file", logging.Int64("size", candidate.Size))

	finish := func(outcome ingest.Outcome, err error) *journal.Record {
		rec.Outcome = outcome
		rec.Duration = m.now().Sub(start)
		if err != nil {
			rec.Detail = err.Error()
			logging.ErrorWithContext(logger, "file processing failed", ingest.Kind(err),
				logging.Error(err),
				logging.String(logging.FieldOutcome, string(outcome)),
				logging.String(logging.FieldImpact, "file left in place for the next cycle"),
			)
		}
		return rec
	}

	batch, err := m.loader.Load(ctx, candidate.Path, candidate.Checksum)
	if err != nil {
		return finish(ingest.OutcomeForError(err), err)
	}

	result, archivePath, err := m.mergeAndPersist(ctx, batch, dryRun, logger)
	if result != nil {
		rec.RowCount = int64(len(result.Data.Rows))
		rec.KeyCount = int64(len(result.NewKeys))
		rec.DroppedColumns = result.DroppedColumns
	}
	rec.ArchivePath = archivePath
	if err != nil {
		return finish(ingest.OutcomeForError(err), err)
	}

	if dryRun {
		rec.Detail = "dry run"
	}
	logger.Info("file merged",
		logging.String(logging.FieldOutcome, string(ingest.OutcomeMerged)),
		logging.Int64("row_count", rec.RowCount),
		logging.Int64("new_keys", rec.KeyCount),
		logging.Int("replaced_rows", result.ReplacedRows),
		logging.Int("dropped_columns", len(result.DroppedColumns)),
		logging.Bool("dry_run", dryRun),
	)
	return finish(ingest.OutcomeMerged, nil)
}

// mergeAndPersist runs the critical section: everything from loading the
// master to archiving the source happens under the cross-process lock.
func (m *Monitor) mergeAndPersist(ctx context.Context, batch *intake.Batch, dryRun bool, logger *slog.Logger) (*merge.Result, string, error) {
	if err := m.lock.Acquire(ctx); err != nil {
		return nil, "", err
	}
	defer m.lock.Release()

	base := m.store.Load()
	result, err := m.engine.Apply(base, batch.Data)
	if err != nil {
		return nil, "", err
	}

	if dryRun {
		logger.Info("dry run: skipping master write and archive",
			logging.Int("row_count", len(result.Data.Rows)),
			logging.Int("new_keys", len(result.NewKeys)),
		)
		return &result, "", nil
	}

	if err := m.store.Persist(result.Data, m.now()); err != nil {
		return &result, "", err
	}
	archivePath, err := m.archiver.Store(batch.Path, result.NewKeys)
	if err != nil {
		return &result, "", err
	}
	return &result, archivePath, nil
}

func (m *Monitor) appendJournal(ctx context.Context, logger *slog.Logger, rec *journal.Record, dryRun bool) {
	if dryRun {
		return
	}
	if err := m.journal.Append(ctx, rec); err != nil {
		logging.WarnWithContext(logger, "journal append failed", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history will be missing this file"),
		)
	}
}
