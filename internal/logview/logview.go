// Package logview is a terminal pager for the cleaning log.
package logview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Store is the cleaning log as the viewer needs it.
type Store interface {
	Get() (string, error)
	Trim(n int) (string, error)
	Clear() error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

const (
	headerHeight = 1
	footerHeight = 1
)

type loadedMsg struct {
	text   string
	status string
	err    error
}

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmTrim
	confirmClear
)

// Model is the bubbletea model of the viewer.
type Model struct {
	store    Store
	keep     int
	viewport viewport.Model
	ready    bool
	text     string
	status   string
	err      error
	confirm  confirmAction
}

// New creates a viewer over store. Trimming keeps the first keep lines.
func New(store Store, keep int) Model {
	return Model{store: store, keep: keep}
}

// Run shows the viewer until the user quits.
func Run(store Store, keep int, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(store, keep), opts...).Run()
	return err
}

// Init loads the log.
func (m Model) Init() tea.Cmd {
	return m.load("")
}

func (m Model) load(status string) tea.Cmd {
	return func() tea.Msg {
		text, err := m.store.Get()
		return loadedMsg{text: text, status: status, err: err}
	}
}

func (m Model) trim() tea.Cmd {
	return func() tea.Msg {
		text, err := m.store.Trim(m.keep)
		return loadedMsg{text: text, status: "log trimmed", err: err}
	}
}

func (m Model) clear() tea.Cmd {
	return func() tea.Msg {
		if err := m.store.Clear(); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: "log cleared"}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		h := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.setContent()

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.text = msg.text
			m.status = msg.status
			m.setContent()
		}
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != confirmNone {
		action := m.confirm
		m.confirm = confirmNone
		switch msg.String() {
		case "y", "Y":
			if action == confirmTrim {
				return m, m.trim()
			}
			return m, m.clear()
		}
		m.status = "canceled"
		return m, nil
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "t":
		m.confirm = confirmTrim
		return m, nil
	case "c":
		m.confirm = confirmClear
		return m, nil
	case "r":
		return m, m.load("reloaded")
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *Model) setContent() {
	if !m.ready {
		return
	}
	if strings.TrimSpace(m.text) == "" {
		m.viewport.SetContent(emptyStyle.Render("The cleaning log is empty."))
		return
	}
	m.viewport.SetContent(m.text)
}

// View renders the viewer.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", titleStyle.Render("Janitor cleaning log"), m.viewport.View(), m.footer())
}

func (m Model) footer() string {
	switch {
	case m.confirm == confirmTrim:
		return promptStyle.Render(fmt.Sprintf("Keep only the newest %d lines? (y/n)", m.keep))
	case m.confirm == confirmClear:
		return promptStyle.Render("Erase the whole log? (y/n)")
	case m.err != nil:
		return errorStyle.Render("error: " + m.err.Error())
	}
	help := "↑/↓ scroll  t trim  c clear  r reload  q quit"
	if m.status != "" {
		help = m.status + "  |  " + help
	}
	return statusStyle.Render(fmt.Sprintf("%s  %3.f%%", help, m.viewport.ScrollPercent()*100))
}
