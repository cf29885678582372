package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sn2234/file-monitor/internal/logging"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
)

// set by the root command before any subcommand runs
var (
	logger    *slog.Logger
	logCloser io.Closer
	sessionID string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "filemon",
		Short: "Folder-watching pipeline runner",
		Long: `filemon watches input folders, waits for arriving files to stop changing,
moves them to a processing folder and runs a configured command against each
one. Depending on the exit status the file is moved to a completed or failed
folder, or deleted when that folder is not configured.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				err := logCloser.Close()
				logCloser = nil
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "locations.json", "path to locations config (.json, .yml or .yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging (same as --log-level debug)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func setupLogging(cmd *cobra.Command) error {
	level := logLevel
	if verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}

	var out io.Writer = cmd.ErrOrStderr()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
		logCloser = f
	}

	l, err := logging.New(out, logging.Options{Level: level, Format: logFormat})
	if err != nil {
		return err
	}

	sessionID = uuid.NewString()
	logger = l.With("session", sessionID)
	slog.SetDefault(logger)
	return nil
}
