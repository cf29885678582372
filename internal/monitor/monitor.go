// Package monitor implements the polling loop that moves files from each
// location's input folder through processing to completed or failed.
//
// All state lives in the filesystem: every cycle re-lists the folders, so a
// restarted monitor resumes from whatever files it finds. Work is strictly
// sequential: one location, one folder, one file at a time.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sn2234/file-monitor/internal/config"
	"github.com/sn2234/file-monitor/internal/journal"
	"github.com/sn2234/file-monitor/internal/logging"
	"github.com/sn2234/file-monitor/internal/runner"
)

// CommandRunner runs a location's command against one file.
// *runner.Executor is the production implementation.
type CommandRunner interface {
	Run(ctx context.Context, loc *config.Location, path string) (*runner.Result, error)
}

// Recorder receives an entry for every routed file. *journal.Store
// satisfies it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Config holds the monitor's dependencies.
type Config struct {
	Locations *config.Locations
	Logger    *slog.Logger
	Runner    CommandRunner   // defaults to runner.NewExecutor(Logger)
	Recorder  Recorder        // optional outcome journal
	State     *State          // optional; created when nil
	Wake      <-chan struct{} // optional early wake-up of the poll sleep
	Session   string          // stamped on journal entries
}

// Monitor drives the intake and execution phases for every location.
type Monitor struct {
	cfg      *config.Locations
	logger   *slog.Logger
	runner   CommandRunner
	recorder Recorder
	detector *Detector
	router   *Router
	state    *State
	wake     <-chan struct{}
	session  string
	now      func() time.Time
}

// New creates a monitor. The configuration must already have passed
// config.VerifyPaths.
func New(cfg Config) (*Monitor, error) {
	if cfg.Locations == nil || len(cfg.Locations.Locations) == 0 {
		return nil, fmt.Errorf("at least one location is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Runner == nil {
		cfg.Runner = runner.NewExecutor(cfg.Logger)
	}
	if cfg.State == nil {
		labels := make([]string, 0, len(cfg.Locations.Locations))
		for i := range cfg.Locations.Locations {
			labels = append(labels, cfg.Locations.Locations[i].Label())
		}
		cfg.State = NewState(labels)
	}

	return &Monitor{
		cfg:      cfg.Locations,
		logger:   cfg.Logger,
		runner:   cfg.Runner,
		recorder: cfg.Recorder,
		detector: NewDetector(cfg.Logger),
		router:   NewRouter(cfg.Logger),
		state:    cfg.State,
		wake:     cfg.Wake,
		session:  cfg.Session,
		now:      time.Now,
	}, nil
}

// State returns the shared state for dashboard consumption.
func (m *Monitor) State() *State {
	return m.state
}

// Run cycles over all locations until ctx is cancelled, sleeping for the
// poll interval between passes. It returns nil on cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.cfg.PollInterval()
	m.logger.Info("monitor started",
		"locations", len(m.cfg.Locations),
		"poll_interval", interval,
	)

	for {
		m.Cycle(ctx)
		if ctx.Err() != nil {
			break
		}

		m.state.SetPhase(PhaseSleeping, fmt.Sprintf("next pass in %s", interval))
		m.state.SetNextPollAt(time.Now().Add(interval))

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		case <-m.wake:
			timer.Stop()
			logging.Trace(m.logger, "poll sleep ended early by folder event")
		}
		if ctx.Err() != nil {
			break
		}
	}

	m.state.SetPhase(PhaseIdle, "stopped")
	m.logger.Info("monitor stopped")
	return nil
}

// Cycle performs one pass: for every location, the intake phase over its
// input folder and then the execution phase over its processing folder.
// Failures are logged; a folder that cannot be listed skips only that
// phase of that location.
func (m *Monitor) Cycle(ctx context.Context) {
	m.state.IncrementCycle()

	for i := range m.cfg.Locations {
		if ctx.Err() != nil {
			return
		}
		loc := &m.cfg.Locations[i]
		label := loc.Label()

		m.state.SetPhase(PhaseIntake, label)
		logging.Trace(m.logger, "scanning input folder", "location", label, "dir", loc.File.Input)
		if err := m.scan(ctx, loc, loc.File.Input, m.intake); err != nil {
			m.logger.Error("intake pass failed", "location", label, "dir", loc.File.Input, "error", err)
			m.state.RecordError(label, err)
		}

		if ctx.Err() != nil {
			return
		}

		m.state.SetPhase(PhaseExecuting, label)
		logging.Trace(m.logger, "scanning processing folder", "location", label, "dir", loc.File.Processing)
		if err := m.scan(ctx, loc, loc.File.Processing, m.execute); err != nil {
			m.logger.Error("execution pass failed", "location", label, "dir", loc.File.Processing, "error", err)
			m.state.RecordError(label, err)
		}
	}
}

func (m *Monitor) record(ctx context.Context, e journal.Entry) {
	if m.recorder == nil {
		return
	}
	e.Session = m.session
	if err := m.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		m.logger.Warn("journal write failed", "file", e.File, "error", err)
	}
}
