package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tuiTickMsg time.Time

// stateChangedMsg is delivered whenever the monitor touches State.
type stateChangedMsg struct{}

// DashboardModel is the Bubbletea model for `filemon run --tui`.
type DashboardModel struct {
	state    *State
	snapshot StateSnapshot
	tab      int // 0=overview, 1=recent
	scroll   int
	frame    int
	width    int
	height   int
	cancelFn func()
}

// NewDashboardModel creates a dashboard reading from state. cancelFn is
// called when the user quits.
func NewDashboardModel(state *State, cancelFn func()) DashboardModel {
	return DashboardModel{
		state:    state,
		cancelFn: cancelFn,
	}
}

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(tuiTickCmd(), waitForChange(m.state))
}

// waitForChange blocks until the monitor signals a state change. The tick
// still drives the spinner and the countdown between changes.
func waitForChange(state *State) tea.Cmd {
	return func() tea.Msg {
		<-state.Events()
		return stateChangedMsg{}
	}
}

func tuiTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelFn != nil {
				m.cancelFn()
			}
			return m, tea.Quit
		case "1":
			m.tab = 0
			m.scroll = 0
		case "2":
			m.tab = 1
			m.scroll = 0
		case "tab":
			m.tab = (m.tab + 1) % 2
			m.scroll = 0
		case "j", "down":
			m.scroll++
			m.clampScroll()
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		case "g":
			m.scroll = 0
		}

	case tuiTickMsg:
		m.snapshot = m.state.Snapshot()
		m.frame++
		m.clampScroll()
		return m, tuiTickCmd()

	case stateChangedMsg:
		m.snapshot = m.state.Snapshot()
		m.clampScroll()
		return m, waitForChange(m.state)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
	}
	return m, nil
}

func (m DashboardModel) contentHeight() int {
	// header (2) + tabs (2) + footer
	return max(m.height-6, 3)
}

func (m DashboardModel) contentLines() []string {
	if m.tab == 1 {
		return strings.Split(m.renderRecent(), "\n")
	}
	return strings.Split(m.renderOverview(), "\n")
}

// clampScroll keeps the viewport inside the current tab's content.
func (m *DashboardModel) clampScroll() {
	limit := max(len(m.contentLines())-m.contentHeight(), 0)
	m.scroll = min(max(m.scroll, 0), limit)
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	contentHeight := m.contentHeight()
	lines := m.contentLines()
	start := min(m.scroll, len(lines))
	end := min(start+contentHeight, len(lines))
	visible := lines[start:end]
	b.WriteString(strings.Join(visible, "\n"))

	for i := len(visible); i < contentHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("1-2: tabs  tab: next  j/k: scroll  g: top  q: quit"))
	return b.String()
}

func (m DashboardModel) renderHeader() string {
	snap := m.snapshot
	uptime := time.Since(snap.StartedAt).Round(time.Second)

	spinner := ""
	if snap.Phase == PhaseIntake || snap.Phase == PhaseExecuting {
		spinner = spinnerChars[m.frame%len(spinnerChars)] + " "
	}

	phase := phaseStyle.Render(snap.Phase.String())
	if snap.PhaseMsg != "" {
		phase += " " + dimStyle.Render("("+snap.PhaseMsg+")")
	}

	return headerStyle.Render("filemon") +
		dimStyle.Render(fmt.Sprintf("  up %s  cycle %d", uptime, snap.TotalCycles)) +
		"\n" + spinner + phase
}

func (m DashboardModel) renderTabs() string {
	tabs := []string{"Overview", "Recent"}
	var parts []string
	for i, name := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if i == m.tab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m DashboardModel) renderOverview() string {
	snap := m.snapshot
	var b strings.Builder

	if snap.Phase == PhaseSleeping && !snap.NextPollAt.IsZero() {
		remaining := max(time.Until(snap.NextPollAt).Round(100*time.Millisecond), 0)
		b.WriteString(fmt.Sprintf("  Next pass in: %s\n\n", warnStyle.Render(remaining.String())))
	}

	b.WriteString(fmt.Sprintf("  %-28s %-8s %-8s %-8s %-8s %s\n",
		"LOCATION", "MOVED", "DONE", "FAILED", "DELETED", "ERRORS"))
	b.WriteString("  " + strings.Repeat("─", 72) + "\n")

	for _, l := range snap.Locations {
		name := fmt.Sprintf("%-28s", l.Name)
		if (snap.Phase == PhaseIntake || snap.Phase == PhaseExecuting) && snap.PhaseMsg == l.Name {
			name = runStyle.Render(name)
		}
		errs := dimStyle.Render("0")
		if l.Errors > 0 {
			errs = failedStyle.Render(fmt.Sprintf("%d", l.Errors))
		}
		b.WriteString(fmt.Sprintf("  %s %-8d %-8d %-8d %-8d %s\n",
			name, l.Moved, l.Completed, l.Failed, l.Deleted, errs))
		if l.LastError != "" {
			b.WriteString("    " + dimStyle.Render(l.LastErrorAt.Format("15:04:05")+" "+l.LastError) + "\n")
		}
	}
	return b.String()
}

func (m DashboardModel) renderRecent() string {
	snap := m.snapshot
	if len(snap.Recent) == 0 {
		return "  " + dimStyle.Render("No files processed yet")
	}

	var b strings.Builder
	for _, ev := range snap.Recent {
		icon, status := actionBadge(ev.Action)
		b.WriteString(fmt.Sprintf("  %s %s %s %-20s %-30s %s\n",
			icon, ev.At.Format("15:04:05"), status, ev.Location, ev.File,
			dimStyle.Render(fmt.Sprintf("exit %d", ev.ExitCode))))
	}
	return b.String()
}
