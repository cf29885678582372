package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sn2234/file-monitor/internal/config"
	"github.com/sn2234/file-monitor/internal/journal"
	"github.com/sn2234/file-monitor/internal/monitor"
)

func newRunCmd() *cobra.Command {
	var (
		once        bool
		tui         bool
		watch       bool
		journalPath string
		lockPath    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the configured locations and process arriving files",
		Long: `Run verifies every configured folder, then loops over all locations:
settled files in each input folder are moved to processing, and every file in
processing has the location's command run against it and is routed by exit
status. The loop sleeps for polling_delay between passes and stops on
SIGINT/SIGTERM. A file whose command was interrupted by shutdown stays in
processing and runs again on the next start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := config.VerifyPaths(cfg, logger); err != nil {
				return fmt.Errorf("verify paths: %w", err)
			}

			dashboard := tui && !once && isTerminal(os.Stdout)
			if tui && !dashboard && !once {
				logger.Warn("stdout is not a terminal, running without dashboard")
			}
			if dashboard && logFile == "" {
				return errors.New("--tui needs --log-file so log lines do not overwrite the dashboard")
			}

			if lockPath == "" {
				lockPath = configFile + ".lock"
			}
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another filemon instance is already running (lock %s)", lockPath)
			}
			defer func() { _ = lock.Unlock() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			mcfg := monitor.Config{
				Locations: cfg,
				Logger:    logger,
				Session:   sessionID,
			}

			if journalPath != "" {
				store, err := journal.Open(journalPath)
				if err != nil {
					return fmt.Errorf("open journal %s: %w", journalPath, err)
				}
				defer func() { _ = store.Close() }()
				mcfg.Recorder = store
				logger.Info("journal enabled", "path", store.Path())
			}

			if watch && !once {
				w, err := monitor.NewWaker(inputDirs(cfg), logger)
				if err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
				go w.Run(ctx)
				mcfg.Wake = w.C()
			}

			m, err := monitor.New(mcfg)
			if err != nil {
				return fmt.Errorf("init monitor: %w", err)
			}

			if once {
				m.Cycle(ctx)
				return nil
			}

			if dashboard {
				done := make(chan error, 1)
				go func() { done <- m.Run(ctx) }()

				model := monitor.NewDashboardModel(m.State(), cancel)
				p := tea.NewProgram(model, tea.WithAltScreen())
				_, tuiErr := p.Run()
				// the dashboard may exit on its own (e.g. terminal closed)
				cancel()
				return errors.Join(tuiErr, <-done)
			}

			return m.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "perform a single pass over all locations and exit")
	cmd.Flags().BoolVar(&tui, "tui", false, "show the live dashboard (requires --log-file)")
	cmd.Flags().BoolVar(&watch, "watch", false, "start the next pass early when a file lands in an input folder")
	cmd.Flags().StringVar(&journalPath, "journal", "", "record routing outcomes in this SQLite database")
	cmd.Flags().StringVar(&lockPath, "lock", "", "single-instance lock file (default <config>.lock)")

	return cmd
}

func inputDirs(cfg *config.Locations) []string {
	dirs := make([]string, 0, len(cfg.Locations))
	seen := make(map[string]bool, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		if seen[loc.File.Input] {
			continue
		}
		seen[loc.File.Input] = true
		dirs = append(dirs, loc.File.Input)
	}
	return dirs
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
