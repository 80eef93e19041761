// Package todo holds the task list and the transitions allowed on it.
package todo

import (
	"fmt"
	"strings"
)

// Task represents a single entry in the task list.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.ID == 0
}

// List is the ordered task list. Methods never modify the receiver.
type List []Task

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidTitle reports whether title is acceptable for a new task.
func ValidTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}

// Clone returns a copy of the list that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Find returns the task with the given id.
func (l List) Find(id int64) (Task, bool) {
	if i := l.index(id); i >= 0 {
		return l[i], true
	}
	return Task{}, false
}

func (l List) index(id int64) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new incomplete task. A blank title leaves the list unchanged.
// Invalid UTF-8 in title or description is replaced with U+FFFD, the form it
// takes once stored as JSON.
func (l List) Add(id int64, title, description string) (List, bool) {
	if !ValidTitle(title) {
		return l, false
	}
	title = strings.ToValidUTF8(title, "\uFFFD")
	description = strings.ToValidUTF8(description, "\uFFFD")
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	out = append(out, Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   false,
	})
	return out, true
}

// Toggle flips the completed flag of the task with the given id.
func (l List) Toggle(id int64) (List, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	out := l.Clone()
	out[i].Completed = !out[i].Completed
	return out, true
}

// Delete removes the task with the given id.
func (l List) Delete(id int64) (List, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out, true
}

// Counts returns the number of pending and completed tasks.
func (l List) Counts() (pending, completed int) {
	for _, t := range l {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}

// MaxID returns the largest id in the list, or 0 for an empty list.
func (l List) MaxID() int64 {
	var max int64
	for _, t := range l {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// Validate checks the list invariants: every task has a unique id in
// [1, MaxTaskID] and a non-blank title.
func (l List) Validate() error {
	seen := make(map[int64]int, len(l))
	for i, t := range l {
		path := fmt.Sprintf("[%d]", i)
		if t.IsZero() {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("missing required field")}
		}
		if t.ID < 0 || t.ID > MaxTaskID {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("id %d out of range [1, %d]", t.ID, MaxTaskID)}
		}
		if prev, ok := seen[t.ID]; ok {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate id %d (also at [%d])", t.ID, prev)}
		}
		seen[t.ID] = i
		if !ValidTitle(t.Title) {
			return &ValidationError{Path: path + ".title", Err: fmt.Errorf("must not be blank")}
		}
	}
	return nil
}
