package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/sn2234/file-monitor/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	var (
		journalPath string
		limit       int
		location    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent routing outcomes from a journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(journalPath); err != nil {
				return fmt.Errorf("journal %s: %w", journalPath, err)
			}
			store, err := journal.Open(journalPath)
			if err != nil {
				return fmt.Errorf("open journal %s: %w", journalPath, err)
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Recent(cmd.Context(), limit, location)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no outcomes recorded")
				return nil
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "journal database written by `run --journal` (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	cmd.Flags().StringVar(&location, "location", "", "only show this location")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func printHistory(w io.Writer, entries []journal.Entry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Time", "Location", "File", "Action", "Exit", "Duration", "Destination"})

	for _, e := range entries {
		dest := e.Destination
		if dest == "" {
			dest = e.Detail
		}
		tw.AppendRow(table.Row{
			e.RecordedAt.Local().Format(time.DateTime),
			e.Location,
			e.File,
			string(e.Action),
			strconv.Itoa(e.ExitCode),
			e.Duration.Round(time.Millisecond).String(),
			dest,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	tw.Render()
}
