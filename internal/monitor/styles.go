package monitor

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sn2234/file-monitor/internal/journal"
)

// ANSI palette indexes.
const (
	colorGray   = lipgloss.Color("8")
	colorRed    = lipgloss.Color("9")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorCyan   = lipgloss.Color("14")
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	phaseStyle     = lipgloss.NewStyle().Bold(true)
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle       = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle       = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle      = dimStyle
	runStyle       = lipgloss.NewStyle().Foreground(colorCyan)
	warnStyle      = lipgloss.NewStyle().Foreground(colorYellow)
	failedStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// actionBadge returns the icon and the padded, colored label for a routed
// file in the recent list.
func actionBadge(a journal.Action) (icon, label string) {
	text := fmt.Sprintf("%-12s", string(a))
	switch a {
	case journal.ActionCompleted:
		return "✓", lipgloss.NewStyle().Foreground(colorGreen).Render(text)
	case journal.ActionFailed:
		return "✗", failedStyle.Render(text)
	case journal.ActionDeleted:
		return "·", dimStyle.Render(text)
	default:
		return "!", warnStyle.Render(text)
	}
}
