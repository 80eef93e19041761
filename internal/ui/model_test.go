package ui

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/webnote/internal/todo"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyUp       = tea.KeyMsg{Type: tea.KeyUp}
	keyBack     = tea.KeyMsg{Type: tea.KeyBackspace}
	keyCtrlC    = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func newTestModel(t *testing.T, titles ...string) (*Model, *todo.Store) {
	t.Helper()
	ctx := context.Background()
	store := todo.Initialize(ctx, nil)
	for _, title := range titles {
		if _, ok, err := store.Add(ctx, title, ""); !ok || err != nil {
			t.Fatalf("Add(%q) = %v, %v", title, ok, err)
		}
	}
	return NewModel(ctx, store, "memory:todos"), store
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestAddThroughInputs(t *testing.T) {
	m, store := newTestModel(t)

	send(m, runes("Buy milk"), keyTab, runes("2"), runes("%"), keyEnter)

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	if tasks[0].Title != "Buy milk" || tasks[0].Description != "2%" || tasks[0].Completed {
		t.Errorf("task = %+v", tasks[0])
	}
	if len(m.title) != 0 || len(m.description) != 0 {
		t.Errorf("buffers not cleared: %q / %q", string(m.title), string(m.description))
	}
	if m.focus != focusTitle {
		t.Errorf("focus = %v, want title", m.focus)
	}
	if !strings.Contains(m.status, "Buy milk") {
		t.Errorf("status = %q", m.status)
	}
}

func TestBlankTitleKeepsBuffers(t *testing.T) {
	m, store := newTestModel(t)

	send(m, keySpace, runes("  "), keyTab, runes("details"), keyEnter)

	if store.Len() != 0 {
		t.Fatalf("blank title was added: %+v", store.Tasks())
	}
	if string(m.title) != "   " || string(m.description) != "details" {
		t.Errorf("buffers changed: %q / %q", string(m.title), string(m.description))
	}
	if !strings.Contains(m.View(), "title is required") {
		t.Errorf("expected hint in view:\n%s", m.View())
	}
}

func TestBackspace(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, runes("abc"), keyBack)
	if string(m.title) != "ab" {
		t.Errorf("title = %q, want ab", string(m.title))
	}
	send(m, keyBack, keyBack, keyBack)
	if len(m.title) != 0 {
		t.Errorf("title = %q, want empty", string(m.title))
	}
}

func TestFocusCycle(t *testing.T) {
	m, _ := newTestModel(t)
	want := []focus{focusDescription, focusList, focusTitle}
	for i, f := range want {
		send(m, keyTab)
		if m.focus != f {
			t.Fatalf("after %d tabs focus = %v, want %v", i+1, m.focus, f)
		}
	}
	send(m, keyShiftTab)
	if m.focus != focusList {
		t.Errorf("shift+tab focus = %v, want list", m.focus)
	}
}

func TestListNavigationToggleDelete(t *testing.T) {
	m, store := newTestModel(t, "A", "B", "C")
	send(m, keyTab, keyTab)

	send(m, keyDown, runes("j"), keyDown)
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2 (clamped)", m.cursor)
	}
	send(m, keyUp)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	send(m, keySpace)
	if tasks := store.Tasks(); !tasks[1].Completed || tasks[0].Completed || tasks[2].Completed {
		t.Fatalf("toggle hit the wrong task: %+v", tasks)
	}
	send(m, keyEnter)
	if store.Tasks()[1].Completed {
		t.Fatal("second toggle should restore the task")
	}

	send(m, runes("k"), runes("d"))
	tasks := store.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "B" {
		t.Fatalf("delete removed the wrong task: %+v", tasks)
	}

	send(m, runes("G"), runes("x"), runes("x"), runes("x"))
	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0", store.Len())
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after emptying the list", m.cursor)
	}
	// deleting from an empty list is a no-op
	send(m, runes("d"))
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	if isQuit(send(m, runes("q"))) {
		t.Error("q in the title input should type, not quit")
	}
	if string(m.title) != "q" {
		t.Errorf("title = %q", string(m.title))
	}
	if !isQuit(send(m, keyCtrlC)) {
		t.Error("ctrl+c should quit from an input")
	}
	send(m, keyTab, keyTab)
	if !isQuit(send(m, runes("q"))) {
		t.Error("q should quit from the list")
	}
}

func TestViewEmptyState(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{AppTitle, EmptyListText, "0 pending, 0 completed", "memory:todos"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewListsTasks(t *testing.T) {
	m, store := newTestModel(t, "Buy milk", "Walk dog")
	ctx := context.Background()
	store.Toggle(ctx, store.Tasks()[1].ID)

	view := m.View()
	if strings.Contains(view, EmptyListText) {
		t.Error("empty state shown for a non-empty list")
	}
	if !strings.Contains(view, "[ ] Buy milk") || !strings.Contains(view, "[x]") || !strings.Contains(view, "Walk dog") {
		t.Errorf("unexpected task rendering:\n%s", view)
	}
	if !strings.Contains(view, "1 pending, 1 completed") {
		t.Errorf("counts missing:\n%s", view)
	}
	if strings.Index(view, "Buy milk") > strings.Index(view, "Walk dog") {
		t.Error("tasks must render in insertion order")
	}
}

func TestViewShowsListenerError(t *testing.T) {
	ctx := context.Background()
	store := todo.Initialize(ctx, nil, todo.WithListener(todo.ListenerFunc(func(context.Context, todo.Event) error {
		return errors.New("disk full")
	})))
	m := NewModel(ctx, store, "")

	send(m, runes("A"), keyEnter)
	if store.Len() != 1 {
		t.Fatal("task should be added despite the listener error")
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Errorf("error not shown:\n%s", m.View())
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, keyTab, keyTab, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help not shown")
	}
	send(m, runes("?"))
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help not hidden")
	}
}

func TestIsTTY(t *testing.T) {
	var b strings.Builder
	if IsTTY(&b) {
		t.Error("strings.Builder is not a TTY")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTTY(f) {
		t.Error("regular file is not a TTY")
	}
}
