package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sn2234/file-monitor/internal/config"
)

// ErrInterrupted is returned when the command was killed because the
// monitor is shutting down. The file must not be routed in that case.
var ErrInterrupted = errors.New("command interrupted by shutdown")

// Result is the outcome of one command run against one file.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// Executor runs a location's process command against a single file and
// blocks until it exits.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an Executor that logs through logger.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes the location's command with path as its only argument.
// A non-zero exit is reported through Result, not as an error; an error
// means the process could not be started (or was killed on shutdown) and
// nothing is known about the file's outcome.
func (e *Executor) Run(ctx context.Context, loc *config.Location, path string) (*Result, error) {
	cmd := BuildCommand(ctx, loc, path)
	setupProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("spawning command",
		"location", loc.Label(),
		"file", path,
		"args", cmd.Args,
		"dir", cmd.Dir,
		"shell", loc.ShellCommand,
	)

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
		}
		// -1 when the child was killed by a signal
		result.ExitCode = exitErr.ExitCode()
	}

	e.logOutput(loc, path, result)
	return result, nil
}

// logOutput reports the exit status at info and the captured streams, when
// non-empty, at debug.
func (e *Executor) logOutput(loc *config.Location, path string, r *Result) {
	e.logger.Info("command finished",
		"location", loc.Label(),
		"file", path,
		"exit_code", r.ExitCode,
		"duration", r.Duration.Round(time.Millisecond),
	)

	var attrs []any
	if out := strings.TrimSpace(r.Stdout); out != "" {
		attrs = append(attrs, "stdout", out)
	}
	if out := strings.TrimSpace(r.Stderr); out != "" {
		attrs = append(attrs, "stderr", out)
	}
	if len(attrs) > 0 {
		e.logger.Debug("command output", append([]any{"location", loc.Label(), "file", path}, attrs...)...)
	}
}

// BuildCommand constructs the child process for path. In shell mode the
// process string and the path are joined with a space and handed to the
// platform shell. Otherwise the process is the executable and the path is
// passed as a separate argument, with no shell parsing.
func BuildCommand(ctx context.Context, loc *config.Location, path string) *exec.Cmd {
	var cmd *exec.Cmd
	if loc.ShellCommand {
		line := loc.Process + " " + path
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/C", line)
		} else {
			cmd = exec.CommandContext(ctx, "sh", "-c", line)
		}
	} else {
		cmd = exec.CommandContext(ctx, loc.Process, path)
	}
	if loc.CurrentDir != "" {
		cmd.Dir = loc.CurrentDir
	}
	return cmd
}
