package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/monitor"
	"hopper/internal/preflight"
	"hopper/internal/watcher"
)

func newWatchCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and merge stable files continuously",
		Long: "Watch runs ingest cycles until interrupted. Cycles fire on a fixed poll\n" +
			"interval and, where the platform supports it, immediately after filesystem\n" +
			"events in the watch directory (debounced by the settle window).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchProcess(cmd.Context(), cctx)
		},
	}
}

func runWatchProcess(cmdCtx context.Context, cctx *commandContext) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("hopper-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update hopper.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "hopper-*.log", Exclude: []string{logPath}},
	)

	if results := preflight.RunAll(signalCtx, cfg); preflight.Failed(results) {
		for _, result := range results {
			if !result.Passed {
				fmt.Fprintf(os.Stderr, "preflight: %s: %s\n", result.Name, result.Detail)
			}
		}
		return errors.New("preflight checks failed")
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "hopper.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal", logging.Error(err))
		return err
	}
	defer store.Close()
	pruneJournal(signalCtx, logger, store, cfg)

	mon, err := monitor.New(cfg, logger, store)
	if err != nil {
		return err
	}

	w := watcher.New(cfg, logger, func(ctx context.Context) error {
		_, err := mon.RunCycle(ctx, false)
		return err
	})
	if err := w.Start(signalCtx); err != nil {
		return err
	}
	defer w.Stop()

	<-signalCtx.Done()
	logger.Info("hopper watch shutting down")
	return nil
}

func pruneJournal(ctx context.Context, logger *slog.Logger, store *journal.Store, cfg *config.Config) {
	if store == nil || cfg.Journal.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Journal.RetentionDays)
	removed, err := store.Prune(ctx, cutoff)
	if err != nil {
		logger.Warn("journal prune failed", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Info("journal pruned",
			logging.Int64("removed", removed),
			logging.String("cutoff", cutoff.Format(time.RFC3339)),
		)
	}
}

// ensureCurrentLogPointer keeps LogDir/hopper.log pointing at the newest run
// log so `tail -f` style workflows survive restarts.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "hopper.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
