package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// Lock serializes the merge-and-persist critical section across processes.
// It is an advisory file lock next to the master file, so every writer of
// the same master contends on the same path regardless of how it was
// started.
type Lock struct {
	flk     *flock.Flock
	timeout time.Duration
	retry   time.Duration
	logger  *slog.Logger
}

func NewLock(cfg *config.Config, logger *slog.Logger) *Lock {
	return &Lock{
		flk:     flock.New(cfg.MasterLockPath()),
		timeout: time.Duration(cfg.Locking.TimeoutSeconds) * time.Second,
		retry:   time.Duration(cfg.Locking.RetryIntervalMillis) * time.Millisecond,
		logger:  logging.NewComponentLogger(logger, "master"),
	}
}

// Acquire blocks until the lock is held, the configured timeout elapses, or
// ctx is done. Timeout surfaces as a lock-timeout error so callers can skip
// the file and retry on a later cycle.
func (l *Lock) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	locked, err := l.flk.TryLockContext(waitCtx, l.retry)
	if locked {
		l.logger.Debug("master lock acquired", logging.String("path", l.flk.Path()))
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ingest.Wrap(ingest.ErrLockTimeout, "master", "lock",
			fmt.Sprintf("could not acquire %s within %s", l.flk.Path(), l.timeout), nil)
	}
	return ingest.Wrap(ingest.ErrPersistence, "master", "lock", "", err)
}

// Release drops the lock. Failures are logged, not returned; the caller has
// nothing useful to do with them at the end of a critical section.
func (l *Lock) Release() {
	if err := l.flk.Unlock(); err != nil {
		l.logger.Warn("master lock release failed",
			logging.String("path", l.flk.Path()),
			logging.Error(err),
		)
		return
	}
	l.logger.Debug("master lock released", logging.String("path", l.flk.Path()))
}
