// Package ui provides the optional full-screen task list.
package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nibzard/tasks-go/internal/messages"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/task"
)

// ErrNotTTY is returned when the TUI is started without a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// TaskStore is the set of store operations the TUI drives.
type TaskStore interface {
	List() []task.Task
	Delete(id int) error
	MarkComplete(id int) error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// keyMap holds the list bindings. Help texts are localized.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Delete   key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func newKeyMap(msg *messages.Printer) keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", msg.Sprintf(messages.TUIKeyUp)),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", msg.Sprintf(messages.TUIKeyDown)),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", msg.Sprintf(messages.TUIKeyComplete)),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", msg.Sprintf(messages.TUIKeyDelete)),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", msg.Sprintf(messages.TUIKeyReload)),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", msg.Sprintf(messages.TUIKeyQuit)),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Complete, k.Delete, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// RunTUI shows the task list until the user quits or ctx is cancelled.
func RunTUI(ctx context.Context, s TaskStore, msg *messages.Printer, in io.Reader, out io.Writer) error {
	if !IsTTY(out) {
		return ErrNotTTY
	}

	program := tea.NewProgram(
		newModel(s, msg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	finalModel, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	if m, ok := finalModel.(*model); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

type model struct {
	store  TaskStore
	msg    *messages.Printer
	keys   keyMap
	help   help.Model
	tasks  []task.Task
	cursor int
	status string
	failed bool
	fatal  error
}

func newModel(s TaskStore, msg *messages.Printer) *model {
	if msg == nil {
		msg = messages.New("")
	}
	m := &model{
		store: s,
		msg:   msg,
		keys:  newKeyMap(msg),
		help:  help.New(),
	}
	m.reload()
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Reload):
			m.reload()
			m.setStatus(m.msg.Sprintf(messages.TUIReloaded), false)
		case key.Matches(msg, m.keys.Complete):
			if t, ok := m.selected(); ok {
				m.apply(t.ID, m.store.MarkComplete(t.ID), messages.TaskCompleted)
			}
		case key.Matches(msg, m.keys.Delete):
			if t, ok := m.selected(); ok {
				m.apply(t.ID, m.store.Delete(t.ID), messages.TaskDeleted)
			}
		}
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.msg.Sprintf(messages.TUITitle)))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString("  " + m.msg.Sprintf(messages.ListEmpty) + "\n")
	}
	for i, t := range m.tasks {
		line := t.Render()
		if t.Completed {
			line = doneStyle.Render(line)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render(">") + " " + line + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// apply reports the outcome of a store call and refreshes the list.
func (m *model) apply(id int, err error, successKey string) {
	idText := strconv.Itoa(id)
	switch {
	case err == nil:
		m.setStatus(m.msg.Sprintf(successKey, idText), false)
	case errors.Is(err, store.ErrNotFound):
		m.setStatus(m.msg.Sprintf(messages.TaskNotFound, idText), true)
	default:
		m.setStatus(m.msg.Sprintf(messages.SaveFailed, err), true)
		m.fatal = err
	}
	m.reload()
}

func (m *model) setStatus(text string, failed bool) {
	m.status = text
	m.failed = failed
}

func (m *model) reload() {
	m.tasks = m.store.List()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
