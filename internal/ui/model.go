package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/webnote/internal/todo"
)

// AppTitle heads the screen.
const AppTitle = "Web Note"

// EmptyListText is shown when there are no tasks.
const EmptyListText = "No tasks yet. Add some above!"

type focus int

const (
	focusTitle focus = iota
	focusDescription
	focusList
	focusCount
)

func (f focus) String() string {
	switch f {
	case focusTitle:
		return "title"
	case focusDescription:
		return "description"
	default:
		return "list"
	}
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle     = lipgloss.NewStyle().Width(13)
	focusedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	blurredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("242"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	emptyStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("242"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sectionDivider = strings.Repeat("─", 40)
)

// Model is the bubbletea model for the task list screen. It holds the two
// input buffers and the list cursor; task state lives in the Store.
type Model struct {
	ctx      context.Context
	store    *todo.Store
	location string

	focus       focus
	title       []rune
	description []rune
	cursor      int

	status   string
	err      error
	showHelp bool
}

// NewModel returns a model bound to store and subscribes it to store
// changes for the status line. location names the slot in the footer.
func NewModel(ctx context.Context, store *todo.Store, location string) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &Model{ctx: ctx, store: store, location: location}
	store.Subscribe(todo.ListenerFunc(m.stateChanged))
	return m
}

func (m *Model) stateChanged(_ context.Context, ev todo.Event) error {
	switch ev.Op {
	case todo.OpAdd:
		m.status = fmt.Sprintf("Added %q", ev.Task.Title)
	case todo.OpToggle:
		state := "pending"
		if ev.Task.Completed {
			state = "completed"
		}
		m.status = fmt.Sprintf("Marked %q %s", ev.Task.Title, state)
	case todo.OpDelete:
		m.status = fmt.Sprintf("Deleted %q", ev.Task.Title)
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % focusCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m, nil
	}

	if m.focus == focusList {
		return m.updateList(key)
	}
	m.updateInput(key)
	return m, nil
}

func (m *Model) updateInput(key tea.KeyMsg) {
	buf := &m.title
	if m.focus == focusDescription {
		buf = &m.description
	}

	switch key.Type {
	case tea.KeyEnter:
		m.submit()
	case tea.KeyEsc:
		m.focus = focusList
	case tea.KeyBackspace:
		if n := len(*buf); n > 0 {
			*buf = (*buf)[:n-1]
		}
	case tea.KeyCtrlU:
		*buf = nil
	case tea.KeySpace:
		*buf = append(*buf, ' ')
	case tea.KeyRunes:
		*buf = append(*buf, key.Runes...)
	}
}

func (m *Model) updateList(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.store.Tasks()
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(tasks)-1, 0)
	case " ", "enter":
		if task, ok := m.selected(tasks); ok {
			_, err := m.store.Toggle(m.ctx, task.ID)
			m.setErr(err)
		}
	case "d", "x", "delete":
		if task, ok := m.selected(tasks); ok {
			_, err := m.store.Delete(m.ctx, task.ID)
			m.setErr(err)
			m.clampCursor()
		}
	case "a", "i":
		m.focus = focusTitle
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// submit dispatches an add intent. Buffers are cleared only when the task
// was accepted.
func (m *Model) submit() {
	task, ok, err := m.store.Add(m.ctx, string(m.title), string(m.description))
	m.setErr(err)
	if !ok {
		if err == nil {
			m.status = "A title is required to add a task."
		}
		m.focus = focusTitle
		return
	}
	m.title = nil
	m.description = nil
	m.focus = focusTitle
	if tasks := m.store.Tasks(); len(tasks) > 0 && tasks[len(tasks)-1].ID == task.ID {
		m.cursor = len(tasks) - 1
	}
}

func (m *Model) selected(tasks todo.List) (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := m.store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setErr(err error) {
	m.err = err
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(AppTitle) + "\n\n")

	b.WriteString(m.renderInput("Title", m.title, focusTitle) + "\n")
	b.WriteString(m.renderInput("Description", m.description, focusDescription) + "\n")
	b.WriteString(sectionDivider + "\n")

	tasks := m.store.Tasks()
	if len(tasks) == 0 {
		b.WriteString(emptyStyle.Render(EmptyListText) + "\n")
	}
	for i, task := range tasks {
		b.WriteString(m.renderTask(i, task) + "\n")
	}

	b.WriteString(sectionDivider + "\n")
	pending, completed := tasks.Counts()
	b.WriteString(fmt.Sprintf("%d pending, %d completed\n", pending, completed))

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	if m.showHelp {
		writeHelp(&b)
	}
	footer := "tab focus | enter add/toggle | d delete | ? help | q quit"
	if m.location != "" {
		footer += " | " + m.location
	}
	b.WriteString(footerStyle.Render(footer) + "\n")
	return b.String()
}

func (m *Model) renderInput(label string, buf []rune, f focus) string {
	text := string(buf)
	style := blurredStyle
	if m.focus == f {
		style = focusedStyle
		text += cursorStyle.Render("_")
	}
	return style.Render(labelStyle.Render(label+":")) + " " + text
}

func (m *Model) renderTask(i int, task todo.Task) string {
	pointer := "  "
	if m.focus == focusList && i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	title := task.Title
	if task.Completed {
		box = "[x]"
		title = doneStyle.Render(title)
	}
	line := pointer + box + " " + title
	if task.Description != "" {
		line += "  " + descStyle.Render(task.Description)
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  tab, shift+tab   Move focus (title, description, list)\n")
	b.WriteString("  enter            Add task (in inputs) / toggle (in list)\n")
	b.WriteString("  esc              Jump to the list\n")
	b.WriteString("  ctrl+u           Clear the focused input\n")
	b.WriteString("  up/k, down/j     Move the cursor\n")
	b.WriteString("  space            Toggle completed\n")
	b.WriteString("  d, x, delete     Delete task\n")
	b.WriteString("  a, i             Focus the title input\n")
	b.WriteString("  q, ctrl+c        Quit\n\n")
}
