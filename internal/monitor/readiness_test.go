package monitor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/sn2234/file-monitor/internal/logging"
)

type fakeInfo struct {
	size    int64
	modTime time.Time
}

func (f fakeInfo) Name() string       { return "f" }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.modTime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

// scriptedDetector returns a detector whose stat walks through samples
// (repeating the last one) and whose sleep only counts.
func scriptedDetector(samples []fakeInfo) (*Detector, *int, *int) {
	stats, sleeps := 0, 0
	d := &Detector{
		logger: logging.Discard(),
		stat: func(string) (os.FileInfo, error) {
			i := min(stats, len(samples)-1)
			stats++
			return samples[i], nil
		},
		sleep: func(ctx context.Context, _ time.Duration) error {
			sleeps++
			return ctx.Err()
		},
	}
	return d, &stats, &sleeps
}

func TestWaitReady_StableFile(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d, stats, sleeps := scriptedDetector([]fakeInfo{{size: 10, modTime: base}})

	if err := d.WaitReady(context.Background(), "f", time.Second, 0); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if *sleeps != 1 {
		t.Fatalf("expected 1 sleep, got %d", *sleeps)
	}
	if *stats != 2 {
		t.Fatalf("expected 2 samples, got %d", *stats)
	}
}

func TestWaitReady_GrowingFile(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d, stats, sleeps := scriptedDetector([]fakeInfo{
		{size: 10, modTime: base},
		{size: 20, modTime: base.Add(time.Second)},
		{size: 30, modTime: base.Add(2 * time.Second)},
		{size: 30, modTime: base.Add(2 * time.Second)},
	})

	if err := d.WaitReady(context.Background(), "f", time.Second, 0); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if *sleeps != 3 {
		t.Fatalf("expected 3 sleeps, got %d", *sleeps)
	}
	if *stats != 4 {
		t.Fatalf("expected 4 samples, got %d", *stats)
	}
}

func TestWaitReady_SameSizeNewModTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d, _, sleeps := scriptedDetector([]fakeInfo{
		{size: 10, modTime: base},
		{size: 10, modTime: base.Add(time.Second)},
	})

	if err := d.WaitReady(context.Background(), "f", time.Second, 0); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if *sleeps != 2 {
		t.Fatalf("a rewrite of equal size must not count as stable; got %d sleeps", *sleeps)
	}
}

func TestWaitReady_MaxWait(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	d := &Detector{
		logger: logging.Discard(),
		stat: func(string) (os.FileInfo, error) {
			n++
			return fakeInfo{size: int64(n), modTime: base}, nil
		},
		sleep: func(context.Context, time.Duration) error { return nil },
	}

	err := d.WaitReady(context.Background(), "f", time.Second, 3*time.Second)
	if !errors.Is(err, ErrNotSettled) {
		t.Fatalf("expected ErrNotSettled, got %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 samples before giving up, got %d", n)
	}
}

func TestWaitReady_FileVanishes(t *testing.T) {
	calls := 0
	d := &Detector{
		logger: logging.Discard(),
		stat: func(string) (os.FileInfo, error) {
			calls++
			if calls > 1 {
				return nil, fs.ErrNotExist
			}
			return fakeInfo{size: 1}, nil
		},
		sleep: func(context.Context, time.Duration) error { return nil },
	}

	err := d.WaitReady(context.Background(), "f", time.Second, 0)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestWaitReady_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _, _ := scriptedDetector([]fakeInfo{{size: 1}, {size: 2}})
	err := d.WaitReady(ctx, "f", time.Second, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitReady_RealFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.bin", "payload")

	d := NewDetector(logging.Discard())
	start := time.Now()
	if err := d.WaitReady(context.Background(), path, 20*time.Millisecond, 0); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned before one delay elapsed: %s", elapsed)
	}
}
