package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sn2234/file-monitor/internal/logging"
)

// ErrNotSettled is returned when a file is still changing after the
// location's max_readiness_wait.
var ErrNotSettled = errors.New("file did not settle")

// sample is the part of a file's metadata that changes while a writer is
// still appending to it.
type sample struct {
	size    int64
	modTime time.Time
}

func sampleOf(info os.FileInfo) sample {
	return sample{size: info.Size(), modTime: info.ModTime()}
}

func (s sample) equal(o sample) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// Detector decides when a newly arrived file has stopped being written.
// There is no completion signal: a file is ready once its size and
// modification time are unchanged across one delay.
type Detector struct {
	logger *slog.Logger
	stat   func(string) (os.FileInfo, error)
	sleep  func(context.Context, time.Duration) error
}

// NewDetector creates a Detector backed by the real filesystem and clock.
func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{
		logger: logger,
		stat:   os.Stat,
		sleep:  sleepCtx,
	}
}

// WaitReady blocks until path has the same size and modification time on
// two consecutive samples taken delay apart. A maxWait of zero waits
// forever; otherwise ErrNotSettled is returned once the accumulated delay
// reaches maxWait without two matching samples.
func (d *Detector) WaitReady(ctx context.Context, path string, delay, maxWait time.Duration) error {
	info, err := d.stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	prev := sampleOf(info)

	var waited time.Duration
	for attempt := 1; ; attempt++ {
		if err := d.sleep(ctx, delay); err != nil {
			return err
		}
		waited += delay

		info, err := d.stat(path)
		if err != nil {
			return fmt.Errorf("stat: %w", err)
		}
		cur := sampleOf(info)

		logging.Trace(d.logger, "readiness sample",
			"file", path,
			"attempt", attempt,
			"size", cur.size,
			"mod_time", cur.modTime,
			"stable", cur.equal(prev),
		)

		if cur.equal(prev) {
			return nil
		}
		if maxWait > 0 && waited >= maxWait {
			return fmt.Errorf("%w after %s", ErrNotSettled, waited)
		}
		prev = cur
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
