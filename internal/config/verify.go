package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

var (
	// ErrMissingPath marks a configured folder that does not exist.
	ErrMissingPath = errors.New("path does not exist")
	// ErrNotDirectory marks a configured folder that exists but is a file.
	ErrNotDirectory = errors.New("path is not a directory")
)

type folder struct {
	role string
	path string
}

// folders lists every directory the location depends on. Optional folders
// are included only when configured.
func (l *Location) folders() []folder {
	dirs := []folder{
		{"input", l.File.Input},
		{"processing", l.File.Processing},
	}
	if l.File.Completed != "" {
		dirs = append(dirs, folder{"completed", l.File.Completed})
	}
	if l.File.Failed != "" {
		dirs = append(dirs, folder{"failed", l.File.Failed})
	}
	if l.CurrentDir != "" {
		dirs = append(dirs, folder{"current_dir", l.CurrentDir})
	}
	return dirs
}

// VerifyPaths checks that every folder referenced by every location exists.
// It checks the whole configuration, logs one error per bad path and returns
// all of them joined. A non-nil result means the monitor must not start.
func VerifyPaths(cfg *Locations, logger *slog.Logger) error {
	var errs []error
	for i := range cfg.Locations {
		loc := &cfg.Locations[i]
		for _, f := range loc.folders() {
			if err := checkDir(f.path); err != nil {
				logger.Error("configured folder unusable",
					"location", loc.Label(),
					"role", f.role,
					"path", f.path,
					"error", err,
				)
				errs = append(errs, fmt.Errorf("location %q %s folder %s: %w", loc.Label(), f.role, f.path, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrMissingPath
		}
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}
