// Package tui is a live view of the compositor's window table. It polls the
// daemon over IPC and can iconify or close the selected window.
package tui

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/compwm/internal/ipc"
)

// DefaultRefresh is how often the window table is re-read.
const DefaultRefresh = time.Second

// Controller is the daemon surface the view uses. *ipc.Client implements it.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	Iconify(windowID uint32) error
	Close(windowID uint32) error
	Reload() error
}

var _ Controller = (*ipc.Client)(nil)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	hungStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type refreshMsg struct {
	status  *ipc.StatusData
	windows []ipc.WindowInfo
	err     error
}

type tickMsg time.Time

type actionMsg struct {
	action string
	id     uint32
	err    error
}

type model struct {
	ctl     Controller
	refresh time.Duration

	status *ipc.StatusData
	// windows is ordered topmost first.
	windows []ipc.WindowInfo
	cursor  int

	lastError string
	message   string

	width  int
	height int
}

func newModel(ctl Controller, refresh time.Duration) model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return model{ctl: ctl, refresh: refresh}
}

// Run starts the view and blocks until the user quits.
func Run(ctl Controller, refresh time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(ctl, refresh), tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) fetch() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		status, err := ctl.GetStatus()
		if err != nil {
			return refreshMsg{err: err}
		}
		data, err := ctl.ListWindows()
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{status: status, windows: data.Windows}
	}
}

func (m model) act(action string, id uint32) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		var err error
		switch action {
		case "iconify":
			err = ctl.Iconify(id)
		case "close":
			err = ctl.Close(id)
		case "reload":
			err = ctl.Reload()
		}
		return actionMsg{action: action, id: id, err: err}
	}
}

func (m model) selected() (ipc.WindowInfo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.windows) {
		return ipc.WindowInfo{}, false
	}
	return m.windows[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case refreshMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.lastError = ""
		m.status = msg.status
		// Topmost first reads naturally.
		m.windows = slices.Clone(msg.windows)
		slices.Reverse(m.windows)
		if m.cursor >= len(m.windows) {
			m.cursor = max(len(m.windows)-1, 0)
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastError = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.lastError = ""
		if msg.action == "reload" {
			m.message = "config reloaded"
		} else {
			m.message = fmt.Sprintf("%s 0x%x", msg.action, msg.id)
		}
		return m, m.fetch()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.windows)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "i":
			if w, ok := m.selected(); ok {
				return m, m.act("iconify", w.ID)
			}
		case "c":
			if w, ok := m.selected(); ok {
				return m, m.act("close", w.ID)
			}
		case "r":
			return m, m.act("reload", 0)
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("compwm"))
	if s := m.status; s != nil {
		mode := "direct"
		if s.Compositing {
			mode = "composited"
		}
		fmt.Fprintf(&b, "  %s · %s · %d windows · %d visible · %d hung · %d iconified · %d animating",
			s.Renderer, mode, s.Windows, s.Visible, s.Hung, s.Iconified, s.Transitioning)
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-11s %-4s %-4s %7s %-10s", "WINDOW", "STATUS", "VIS", "Z", "OPACITY", "BEHIND")))
	b.WriteString("\n")
	if len(m.windows) == 0 {
		b.WriteString(dimStyle.Render("no composited windows"))
		b.WriteString("\n")
	}
	for i, w := range m.windows {
		vis := "-"
		if w.Visible {
			vis = "yes"
		}
		behind := "-"
		if w.Behind != 0 {
			behind = fmt.Sprintf("0x%x", w.Behind)
		}
		line := fmt.Sprintf("0x%-8x %-11s %-4s %-4d %7.2f %-10s", w.ID, w.Status, vis, w.ZValue, w.Opacity, behind)
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case w.Status == "hung":
			line = hungStyle.Render(line)
		case w.Iconified:
			line = dimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.lastError != "" {
		b.WriteString(errorStyle.Render(m.lastError))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(dimStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("j/k move · i iconify · c close · r reload config · q quit"))
	return b.String()
}
