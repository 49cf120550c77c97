package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hopper/internal/config"
	"hopper/internal/logging"
)

// Watcher schedules ingest cycles for a long-running process. A cycle runs
// immediately at start, whenever the watch directory changes (after a
// settle delay so writers can finish), and on a poll ticker as a fallback
// for filesystems where change events never arrive.
type Watcher struct {
	cfg    *config.Config
	logger *slog.Logger
	run    func(ctx context.Context) error
	poll   time.Duration
	settle time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	fsw     *fsnotify.Watcher
	trigger chan struct{}
}

// New builds a watcher that invokes run for every scheduled cycle. run is
// called from a single goroutine, never concurrently with itself.
func New(cfg *config.Config, logger *slog.Logger, run func(ctx context.Context) error) *Watcher {
	poll := time.Duration(cfg.Watch.PollIntervalSeconds) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &Watcher{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "watcher"),
		run:     run,
		poll:    poll,
		settle:  time.Duration(cfg.Watch.SettleSeconds) * time.Second,
		trigger: make(chan struct{}, 1),
	}
}

// Start launches the scheduling goroutines. Filesystem watching is best
// effort: if it cannot be set up the watcher degrades to polling alone.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	if fsw, err := fsnotify.NewWatcher(); err != nil {
		logging.WarnWithContext(w.logger, "filesystem events unavailable", "fsnotify_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to polling only"),
		)
	} else if err := fsw.Add(w.cfg.Paths.WatchDir); err != nil {
		logging.WarnWithContext(w.logger, "cannot watch inbox directory", "fsnotify_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to polling only"),
		)
		_ = fsw.Close()
	} else {
		w.fsw = fsw
		w.wg.Add(1)
		go w.eventLoop(fsw)
	}

	w.wg.Add(1)
	go w.runLoop()

	w.logger.Info("watch started",
		logging.String("watch_dir", w.cfg.Paths.WatchDir),
		logging.Duration("poll_interval", w.poll),
		logging.Duration("settle", w.settle),
		logging.Bool("fs_events", w.fsw != nil),
	)
	return nil
}

// Stop cancels scheduling and waits for an in-flight cycle to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fsw != nil {
		_ = fsw.Close()
	}
	w.wg.Wait()
	w.logger.Info("watch stopped")
}

func (w *Watcher) eventLoop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.cfg.MatchesExtension(event.Name) {
				continue
			}
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) runLoop() {
	defer w.wg.Done()

	w.invoke()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.invoke()
		case <-w.trigger:
			w.settleWait()
			w.invoke()
		}
	}
}

// settleWait gives the writer of a just-changed file time to finish, then
// collapses any triggers that piled up in the meantime into this cycle.
func (w *Watcher) settleWait() {
	if w.settle > 0 {
		timer := time.NewTimer(w.settle)
		defer timer.Stop()
		select {
		case <-w.ctx.Done():
			return
		case <-timer.C:
		}
	}
	select {
	case <-w.trigger:
	default:
	}
}

func (w *Watcher) invoke() {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.ErrorWithContext(w.logger, "ingest cycle failed", "cycle_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check watch directory permissions and disk state"),
		)
	}
}
