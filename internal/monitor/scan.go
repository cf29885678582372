package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sn2234/file-monitor/internal/config"
	"github.com/sn2234/file-monitor/internal/journal"
	"github.com/sn2234/file-monitor/internal/logging"
	"github.com/sn2234/file-monitor/internal/runner"
)

// ErrUnexpectedDir is reported for a directory found in a processing
// folder, which must only hold files awaiting execution.
var ErrUnexpectedDir = errors.New("unexpected directory in processing folder")

// itemHandler processes one directory entry of one location.
type itemHandler func(ctx context.Context, loc *config.Location, entry os.DirEntry) error

// scan lists dir and hands every entry to handle in name order. A failing
// entry is logged and skipped; only a listing failure is returned.
func (m *Monitor) scan(ctx context.Context, loc *config.Location, dir string, handle itemHandler) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list folder: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if err := handle(ctx, loc, entry); err != nil {
			if ctx.Err() != nil {
				// shutdown interrupted the item; it is picked up again on restart
				return nil
			}
			item := filepath.Join(dir, entry.Name())
			m.logger.Error("item failed", "location", loc.Label(), "item", item, "error", err)
			m.state.RecordError(loc.Label(), fmt.Errorf("%s: %w", entry.Name(), err))
		}
	}
	return nil
}

// intake waits for a newly arrived file to stop changing and moves it to
// the processing folder. Directories in the input folder are ignored.
func (m *Monitor) intake(ctx context.Context, loc *config.Location, entry os.DirEntry) error {
	src := filepath.Join(loc.File.Input, entry.Name())
	dir, err := isDir(src, entry)
	if err != nil {
		return err
	}
	if dir {
		logging.Trace(m.logger, "skipping directory in input folder", "location", loc.Label(), "name", entry.Name())
		return nil
	}

	logging.Trace(m.logger, "waiting for file to settle",
		"location", loc.Label(),
		"file", src,
		"delay", loc.ReadinessDelay.Duration(),
	)
	if err := m.detector.WaitReady(ctx, src, loc.ReadinessDelay.Duration(), loc.MaxReadinessWait.Duration()); err != nil {
		return fmt.Errorf("readiness: %w", err)
	}

	dst := filepath.Join(loc.File.Processing, destinationName(entry.Name(), loc.ProcessingTimestamp, m.now()))
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move to processing: %w", err)
	}

	m.logger.Info("file moved to processing", "location", loc.Label(), "file", src, "to", dst)
	m.state.RecordIntake(loc.Label())
	return nil
}

// execute runs the location's command against a processing-folder file and
// routes it by exit status. A file the command removed or moved itself is
// left alone.
func (m *Monitor) execute(ctx context.Context, loc *config.Location, entry os.DirEntry) error {
	path := filepath.Join(loc.File.Processing, entry.Name())
	dir, err := isDir(path, entry)
	if err != nil {
		return err
	}
	if dir {
		return ErrUnexpectedDir
	}

	result, err := m.runner.Run(ctx, loc, path)
	if err != nil {
		if !errors.Is(err, runner.ErrInterrupted) {
			m.record(ctx, journal.Entry{
				Location: loc.Label(),
				File:     path,
				ExitCode: -1,
				Action:   journal.ActionStartFailed,
				Detail:   err.Error(),
			})
		}
		return fmt.Errorf("run command: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Info("file consumed by command, nothing to route", "location", loc.Label(), "file", path)
			return nil
		}
		return fmt.Errorf("stat after command: %w", err)
	}

	outcome, err := m.router.Route(loc, path, result.Success())
	if err != nil {
		m.record(ctx, journal.Entry{
			Location: loc.Label(),
			File:     path,
			ExitCode: result.ExitCode,
			Action:   journal.ActionRouteFailed,
			Detail:   err.Error(),
			Duration: result.Duration,
		})
		return fmt.Errorf("route: %w", err)
	}

	m.state.RecordOutcome(OutcomeEvent{
		At:          time.Now(),
		Location:    loc.Label(),
		File:        entry.Name(),
		Action:      outcome.Action,
		ExitCode:    result.ExitCode,
		Destination: outcome.Destination,
	})
	m.record(ctx, journal.Entry{
		Location:    loc.Label(),
		File:        path,
		ExitCode:    result.ExitCode,
		Action:      outcome.Action,
		Destination: outcome.Destination,
		Duration:    result.Duration,
	})
	return nil
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(path string, entry os.DirEntry) (bool, error) {
	if entry.IsDir() {
		return true, nil
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	return info.IsDir(), nil
}
