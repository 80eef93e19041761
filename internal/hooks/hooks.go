// Package hooks invokes an external command after each task list change.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/nibzard/webnote/internal/todo"
)

// Environment variables passed to the hook command.
const (
	EnvTaskTitle     = "WEBNOTE_TASK_TITLE"
	EnvTaskCompleted = "WEBNOTE_TASK_COMPLETED"
)

// waitDelay bounds how long Invoke waits for output pipes held open by
// processes the hook left running in the background.
const waitDelay = time.Second

// Options configures a hook invocation.
type Options struct {
	Command  string
	Op       todo.Op
	Task     todo.Task
	Location string
	WorkDir  string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command as `command <op> <task-id> <location>`.
// An empty command or op is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" || opts.Op == "" {
		return Result{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := []string{string(opts.Op), strconv.FormatInt(opts.Task.ID, 10), opts.Location}
	cmd := exec.CommandContext(ctx, opts.Command, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		EnvTaskTitle+"="+opts.Task.Title,
		EnvTaskCompleted+"="+strconv.FormatBool(opts.Task.Completed),
	)
	cmd.Stdout = outputWriter(opts.Stdout, os.Stdout)
	cmd.Stderr = outputWriter(opts.Stderr, os.Stderr)
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// The hook exited 0; only a background child still holds its output.
		err = nil
	}
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed (exit %d): %w", result.ExitCode, err)
	}
	return result, nil
}

// Hook is a store listener that invokes Command for every changed transition.
type Hook struct {
	Command  string
	Location string
	WorkDir  string
	Stdout   io.Writer
	Stderr   io.Writer
}

// StateChanged implements todo.Listener.
func (h *Hook) StateChanged(ctx context.Context, ev todo.Event) error {
	_, err := Invoke(ctx, Options{
		Command:  h.Command,
		Op:       ev.Op,
		Task:     ev.Task,
		Location: h.Location,
		WorkDir:  h.WorkDir,
		Stdout:   h.Stdout,
		Stderr:   h.Stderr,
	})
	return err
}

// outputWriter returns w, fallback when w is nil, or nil for io.Discard so
// the child writes to the null device without a copying pipe.
func outputWriter(w, fallback io.Writer) io.Writer {
	switch w {
	case nil:
		return fallback
	case io.Discard:
		return nil
	}
	return w
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
