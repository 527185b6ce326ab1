// Package tui provides a Bubble Tea terminal user interface for the addon
// manager.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
	"github.com/handiism/l4d2-addon-manager/internal/model"
	"github.com/handiism/l4d2-addon-manager/internal/session"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D")).
			Strikethrough(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)

	titleTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))
)

// State represents the current UI state.
type State int

const (
	// StateDirInput asks for the game directory.
	StateDirInput State = iota

	// StateBrowse shows the addon lists.
	StateBrowse

	// StateImportInput asks for an archive path to import.
	StateImportInput

	// StateWorking blocks input while an operation runs.
	StateWorking
)

// row is one line of the combined addon list.
type row struct {
	addon    model.Addon
	workshop bool
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	sess      *session.Session
	textInput textinput.Model
	spinner   spinner.Model

	rows   []row
	cursor int

	status string
	errMsg string

	width  int
	height int
}

// NewModel creates a new TUI model. When the session already has a game
// directory the initial scan starts immediately.
func NewModel(sess *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/Left 4 Dead 2"
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	m := Model{
		state:     StateDirInput,
		sess:      sess,
		textInput: ti,
		spinner:   sp,
	}
	if sess.GameDir() != "" {
		m.state = StateWorking
		m.status = "Scanning addons..."
	} else {
		m.textInput.Focus()
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.waitForEvent()}
	if m.state == StateWorking {
		cmds = append(cmds, m.rescan())
	}
	return tea.Batch(cmds...)
}

// Message types
type (
	// SessionEventMsg wraps a state-change event from the session.
	SessionEventMsg struct {
		Event session.Event
	}

	// ScanDoneMsg is sent when a rescan completes.
	ScanDoneMsg struct {
		Err error
	}

	// ImportDoneMsg is sent when an archive import completes.
	ImportDoneMsg struct {
		Path string
		Err  error
	}

	// ExportDoneMsg is sent when an export completes.
	ExportDoneMsg struct {
		Result *archive.ExportResult
		Err    error
	}

	// DeleteDoneMsg is sent when a batch delete completes.
	DeleteDoneMsg struct {
		Result *archive.DeleteResult
		Err    error
	}

	// ToggleDoneMsg is sent when an enable/disable rename completes.
	ToggleDoneMsg struct {
		Err error
	}
)

func (m Model) waitForEvent() tea.Cmd {
	events := m.sess.Events()
	return func() tea.Msg {
		return SessionEventMsg{Event: <-events}
	}
}

func (m Model) rescan() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return ScanDoneMsg{Err: sess.Rescan()}
	}
}

func (m Model) setDirectory(dir string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return ScanDoneMsg{Err: sess.SetDirectory(dir)}
	}
}

func (m Model) importArchive(path string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return ImportDoneMsg{Path: path, Err: sess.ImportArchive(path)}
	}
}

func (m Model) exportSelected() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		res, err := sess.ExportSelected()
		return ExportDoneMsg{Result: res, Err: err}
	}
}

func (m Model) deleteSelected() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		res, err := sess.DeleteSelected()
		return DeleteDoneMsg{Result: res, Err: err}
	}
}

func (m Model) toggleAddon(a model.Addon) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if a.Disabled {
			return ToggleDoneMsg{Err: sess.Enable(a)}
		}
		return ToggleDoneMsg{Err: sess.Disable(a)}
	}
}

// refreshRows rebuilds the combined list from the session snapshot.
func (m *Model) refreshRows() {
	m.rows = m.rows[:0]
	for _, a := range m.sess.Local() {
		m.rows = append(m.rows, row{addon: a})
	}
	for _, a := range m.sess.Workshop() {
		m.rows = append(m.rows, row{addon: a, workshop: true})
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SessionEventMsg:
		if msg.Event.Kind == session.EventError && msg.Event.Message != "" {
			m.errMsg = msg.Event.Message
		}
		m.refreshRows()
		cmds = append(cmds, m.waitForEvent())

	case ScanDoneMsg:
		m.refreshRows()
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.errMsg = ""
			m.status = fmt.Sprintf("%d local, %d workshop addons",
				len(m.sess.Local()), len(m.sess.Workshop()))
		}
		m.state = StateBrowse

	case ImportDoneMsg:
		m.refreshRows()
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.errMsg = ""
			m.status = fmt.Sprintf("Imported %s", msg.Path)
		}
		m.state = StateBrowse

	case ExportDoneMsg:
		m.refreshRows()
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else if msg.Result != nil {
			m.errMsg = ""
			m.status = fmt.Sprintf("Archive created: %s (%.2f MB) in %.2fs",
				msg.Result.ArchivePath,
				float64(msg.Result.Size)/(1024*1024),
				msg.Result.Elapsed.Seconds())
		}
		m.state = StateBrowse

	case DeleteDoneMsg:
		m.refreshRows()
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else if msg.Result != nil {
			m.errMsg = ""
			m.status = fmt.Sprintf("Deleted %d file(s)", msg.Result.Deleted)
		}
		m.state = StateBrowse

	case ToggleDoneMsg:
		m.refreshRows()
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		}
		m.state = StateBrowse
	}

	if m.state == StateDirInput || m.state == StateImportInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.state {
	case StateDirInput, StateImportInput:
		switch msg.String() {
		case "esc":
			if m.state == StateImportInput {
				m.state = StateBrowse
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			value := strings.TrimSpace(m.textInput.Value())
			if value == "" {
				return m, nil
			}
			m.textInput.SetValue("")
			m.textInput.Blur()
			if m.state == StateDirInput {
				m.state = StateWorking
				m.status = "Scanning addons..."
				return m, m.setDirectory(value)
			}
			m.state = StateWorking
			m.status = "Importing archive..."
			return m, m.importArchive(value)
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd

	case StateBrowse:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case " ":
			if m.cursor < len(m.rows) {
				r := m.rows[m.cursor]
				if r.workshop {
					m.sess.ToggleWorkshop(r.addon.Path)
				} else {
					m.sess.ToggleLocal(r.addon.Path)
				}
			}

		case "t":
			if m.cursor < len(m.rows) && !m.rows[m.cursor].workshop {
				m.state = StateWorking
				m.status = "Renaming..."
				return m, m.toggleAddon(m.rows[m.cursor].addon)
			}

		case "e":
			if m.sess.SelectionCount() > 0 {
				m.state = StateWorking
				m.status = "Exporting selection..."
				return m, m.exportSelected()
			}
			m.errMsg = archive.ErrNoFilesSelected.Error()

		case "x":
			if m.sess.SelectionCount() > 0 {
				m.state = StateWorking
				m.status = "Deleting selection..."
				return m, m.deleteSelected()
			}
			m.errMsg = archive.ErrNoFilesSelected.Error()

		case "i":
			m.state = StateImportInput
			m.textInput.Placeholder = "/path/to/archive.zip"
			m.textInput.Focus()
			return m, textinput.Blink

		case "d":
			m.state = StateDirInput
			m.textInput.Placeholder = "/path/to/Left 4 Dead 2"
			m.textInput.Focus()
			return m, textinput.Blink

		case "r":
			m.state = StateWorking
			m.status = "Scanning addons..."
			return m, m.rescan()
		}
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("L4D2 Addon Manager"))
	b.WriteString("\n")

	switch m.state {
	case StateDirInput:
		b.WriteString(sectionStyle.Render("Game directory:"))
		b.WriteString("\n\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")

	case StateImportInput:
		b.WriteString(sectionStyle.Render("Archive to import (.zip, .7z, .tar, .tar.zst):"))
		b.WriteString("\n\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")

	case StateWorking:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")

	case StateBrowse:
		b.WriteString(m.viewList())
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder

	local := m.sess.Local()
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Local addons (%d)", len(local))))
	b.WriteString("\n")

	wroteWorkshopHeader := false
	for i, r := range m.rows {
		if r.workshop && !wroteWorkshopHeader {
			b.WriteString("\n")
			b.WriteString(sectionStyle.Render(
				fmt.Sprintf("Workshop addons (%d)", len(m.sess.Workshop()))))
			b.WriteString("\n")
			wroteWorkshopHeader = true
		}
		b.WriteString(m.viewRow(i, r))
	}
	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  (no addons found)"))
		b.WriteString("\n")
	}
	if !wroteWorkshopHeader {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Workshop addons (0)"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewRow(i int, r row) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}

	check := "[ ]"
	if m.sess.IsSelected(r.addon.Path) {
		check = "[x]"
	}

	name := r.addon.Name
	if r.addon.Disabled {
		name = disabledStyle.Render(name)
	}

	line := fmt.Sprintf("%s%s %s  %.2f MB", cursor, check, name,
		float64(r.addon.Size)/(1024*1024))
	if r.addon.Title != "" {
		line += titleTagStyle.Render(fmt.Sprintf("  %q", r.addon.Title))
	}
	return line + "\n"
}

func (m Model) helpText() string {
	switch m.state {
	case StateDirInput:
		return "enter: confirm • esc: quit"
	case StateImportInput:
		return "enter: import • esc: back"
	case StateBrowse:
		return "↑/↓: move • space: select • t: enable/disable • e: export • x: delete • i: import • d: directory • r: rescan • q: quit"
	default:
		return "ctrl+c: quit"
	}
}
