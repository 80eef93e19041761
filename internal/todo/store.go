package todo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Op names a transition.
type Op string

const (
	OpAdd    Op = "add"
	OpToggle Op = "toggle"
	OpDelete Op = "delete"
)

// Event describes a transition that changed the list.
type Event struct {
	Op   Op
	Task Task // the added, toggled (new state) or deleted task
	List List // the list after the transition
}

// Listener is notified after every transition that changed the list.
type Listener interface {
	StateChanged(ctx context.Context, ev Event) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, ev Event) error

// StateChanged calls f(ctx, ev).
func (f ListenerFunc) StateChanged(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Loader rehydrates a previously persisted list. ok is false when nothing
// usable was stored.
type Loader interface {
	Load(ctx context.Context) (list List, ok bool)
}

// Store holds the authoritative list for a session.
type Store struct {
	list      List
	ids       *IDGenerator
	listeners []Listener
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.ids.now = now
	}
}

// WithListener subscribes l at construction time.
func WithListener(l Listener) Option {
	return func(s *Store) {
		s.Subscribe(l)
	}
}

// Initialize builds a Store from whatever the loader has. Missing or invalid
// data yields an empty list.
func Initialize(ctx context.Context, loader Loader, opts ...Option) *Store {
	var list List
	if loader != nil {
		if loaded, ok := loader.Load(ctx); ok && loaded.Validate() == nil {
			list = loaded
		}
	}
	if list == nil {
		list = List{}
	}
	s := &Store{
		list: list,
		ids:  NewIDGenerator(list.MaxID()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe adds a listener. Listeners run in subscription order.
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() List {
	return s.list.Clone()
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.list)
}

// Add creates a task. ok is false when the title is blank or no id is left;
// the latter also returns ErrIDsExhausted.
func (s *Store) Add(ctx context.Context, title, description string) (Task, bool, error) {
	if !ValidTitle(title) {
		return Task{}, false, nil
	}
	id, err := s.ids.Next()
	if err != nil {
		return Task{}, false, err
	}
	next, _ := s.list.Add(id, title, description)
	task := next[len(next)-1]
	return task, true, s.commit(ctx, OpAdd, task, next)
}

// Toggle flips completion of the task with id. ok is false for unknown ids.
func (s *Store) Toggle(ctx context.Context, id int64) (bool, error) {
	next, changed := s.list.Toggle(id)
	if !changed {
		return false, nil
	}
	task, _ := next.Find(id)
	return true, s.commit(ctx, OpToggle, task, next)
}

// Delete removes the task with id. ok is false for unknown ids.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	task, found := s.list.Find(id)
	if !found {
		return false, nil
	}
	next, _ := s.list.Delete(id)
	return true, s.commit(ctx, OpDelete, task, next)
}

// commit installs next and fans the event out. The new list stays in place
// even if a listener fails.
func (s *Store) commit(ctx context.Context, op Op, task Task, next List) error {
	s.list = next
	var errs []error
	for _, l := range s.listeners {
		ev := Event{Op: op, Task: task, List: next.Clone()}
		if err := l.StateChanged(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s task %d: %w", op, task.ID, errors.Join(errs...))
}
