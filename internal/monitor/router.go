package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sn2234/file-monitor/internal/config"
	"github.com/sn2234/file-monitor/internal/journal"
)

// Outcome is where a file ended up after its command ran.
type Outcome struct {
	Action      journal.Action
	Destination string // empty when the file was deleted
}

// Router moves a processed file to its completed or failed folder, or
// deletes it when that folder is not configured.
type Router struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRouter creates a Router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{logger: logger, now: time.Now}
}

// Route applies the outcome for path. On error the file may still be in
// the processing folder and its command will run again next cycle.
func (r *Router) Route(loc *config.Location, path string, success bool) (Outcome, error) {
	dir, action := loc.File.Failed, journal.ActionFailed
	if success {
		dir, action = loc.File.Completed, journal.ActionCompleted
	}

	if dir == "" {
		if err := os.Remove(path); err != nil {
			return Outcome{}, fmt.Errorf("delete: %w", err)
		}
		r.logger.Info("file deleted",
			"location", loc.Label(),
			"file", path,
			"success", success,
		)
		return Outcome{Action: journal.ActionDeleted}, nil
	}

	name := destinationName(filepath.Base(path), loc.CompleteTimestamp, r.now())
	dst := filepath.Join(dir, name)
	if err := os.Rename(path, dst); err != nil {
		return Outcome{}, fmt.Errorf("move to %s: %w", action, err)
	}
	r.logger.Info("file moved",
		"location", loc.Label(),
		"file", path,
		"to", dst,
		"success", success,
	)
	return Outcome{Action: action, Destination: dst}, nil
}
