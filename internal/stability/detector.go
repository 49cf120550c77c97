package stability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// Candidate is a file that held still between checksum passes.
type Candidate struct {
	Path     string
	Checksum string
	Size     int64
}

// Skip records one file excluded from the stable set and why.
type Skip struct {
	Path   string
	Reason string
	Err    error
}

// Detector decides which candidate files have stopped changing by hashing them
// twice around a shared wait.
type Detector struct {
	wait      time.Duration
	chunkSize int
	maxBytes  int64
	logger    *slog.Logger

	sleep func(context.Context, time.Duration) error
}

// NewDetector builds a detector from configuration.
func NewDetector(cfg *config.Config, logger *slog.Logger) *Detector {
	return &Detector{
		wait:      time.Duration(cfg.Ingest.ChecksumWaitSeconds) * time.Second,
		chunkSize: cfg.Ingest.ChunkSize,
		maxBytes:  int64(cfg.Ingest.MaxFileSizeMB) * 1024 * 1024,
		logger:    logging.NewComponentLogger(logger, "stability"),
		sleep:     ctxSleep,
	}
}

// FilterStable hashes every path, waits once, hashes again, and splits the
// input into files whose digests matched and files to defer. Only context
// cancellation is returned as an error; per-file problems become skips.
func (d *Detector) FilterStable(ctx context.Context, paths []string) ([]Candidate, []Skip, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}

	first := make([]digestResult, len(paths))
	for i, path := range paths {
		first[i] = d.digest(path)
	}

	if err := d.sleep(ctx, d.wait); err != nil {
		return nil, nil, err
	}

	stable := make([]Candidate, 0, len(paths))
	var skipped []Skip
	for i, path := range paths {
		second := d.digest(path)
		switch {
		case first[i].err != nil:
			skipped = append(skipped, Skip{Path: path, Reason: first[i].reason, Err: classify(first[i])})
		case second.err != nil:
			skipped = append(skipped, Skip{Path: path, Reason: second.reason, Err: classify(second)})
		case first[i].sum != second.sum:
			unstable := digestResult{
				reason: "changed between checksum passes",
				err:    fmt.Errorf("checksum %s became %s", shortSum(first[i].sum), shortSum(second.sum)),
			}
			skipped = append(skipped, Skip{Path: path, Reason: unstable.reason, Err: classify(unstable)})
		default:
			stable = append(stable, Candidate{Path: path, Checksum: second.sum, Size: second.size})
			d.logger.Debug("file stable", logging.String(logging.FieldSourceFile, path), logging.String("checksum", shortSum(second.sum)))
		}
	}

	return stable, skipped, nil
}

type digestResult struct {
	sum    string
	size   int64
	reason string
	err    error
}

func (d *Detector) digest(path string) digestResult {
	info, err := os.Stat(path)
	if err != nil {
		return digestResult{reason: "unreadable", err: err}
	}
	if d.maxBytes > 0 && info.Size() > d.maxBytes {
		return digestResult{
			reason: "exceeds max file size",
			err:    fmt.Errorf("file is %d bytes, limit %d", info.Size(), d.maxBytes),
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return digestResult{reason: "unreadable", err: err}
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, d.chunkSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return digestResult{reason: "unreadable", err: err}
	}
	return digestResult{sum: hex.EncodeToString(hasher.Sum(nil)), size: info.Size()}
}

func classify(result digestResult) error {
	return ingest.Wrap(ingest.ErrChecksum, "stability", "digest", result.reason, result.err)
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	if sum == "" {
		return "(none)"
	}
	return sum
}
