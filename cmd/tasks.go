package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nibzard/webnote/internal/export"
	"github.com/nibzard/webnote/internal/todo"
	"github.com/nibzard/webnote/internal/ui"
)

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("tui")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY (use add, ls, toggle or rm instead)")
	}

	// Console output below error level and hook output would corrupt the
	// alternate screen.
	s, err := a.openSession(ctx, sessionOptions{logLevel: "error", hookOut: io.Discard})
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.Run(ctx, s.store, s.slot.Location())
}

func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	description := fs.String("d", "", "Task description")
	fs.StringVar(description, "description", "", "Task description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")

	s, err := a.openSession(ctx, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	task, ok, err := s.store.Add(ctx, title, *description)
	if !ok && err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing added: a task needs a non-blank title.")
		return nil
	}
	fmt.Fprintf(a.out, "Added %d: %s\n", task.ID, task.Title)
	return err
}

func (a *app) lsCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("ls")
	pending := fs.Bool("pending", false, "Only show pending tasks")
	done := fs.Bool("done", false, "Only show completed tasks")
	verbose := fs.Bool("v", false, "Show descriptions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}
	if *pending && *done {
		return fmt.Errorf("-pending and -done are mutually exclusive")
	}

	s, err := a.openSession(ctx, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	tasks := s.store.Tasks()
	var shown todo.List
	for _, t := range tasks {
		if (*pending && t.Completed) || (*done && !t.Completed) {
			continue
		}
		shown = append(shown, t)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, ui.EmptyListText)
		return nil
	}
	if len(shown) == 0 {
		fmt.Fprintln(a.out, "No tasks found.")
	}
	printTaskList(a.out, shown, *verbose)

	pendingCount, completedCount := tasks.Counts()
	fmt.Fprintf(a.out, "\n%d pending, %d completed\n", pendingCount, completedCount)
	return nil
}

func printTaskList(w io.Writer, tasks todo.List, verbose bool) {
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "%s %d  %s\n", box, t.ID, t.Title)
		if verbose && t.Description != "" {
			fmt.Fprintf(w, "      %s\n", t.Description)
		}
	}
}

func (a *app) toggleCommand(ctx context.Context, args []string) error {
	return a.idCommand(ctx, "toggle", args, func(s *session, id int64) error {
		changed, err := s.store.Toggle(ctx, id)
		if !changed {
			fmt.Fprintf(a.out, "No task with id %d.\n", id)
			return nil
		}
		task, _ := s.store.Tasks().Find(id)
		state := "pending"
		if task.Completed {
			state = "completed"
		}
		fmt.Fprintf(a.out, "Marked %d %s: %s\n", id, state, task.Title)
		return err
	})
}

func (a *app) rmCommand(ctx context.Context, args []string) error {
	return a.idCommand(ctx, "rm", args, func(s *session, id int64) error {
		task, _ := s.store.Tasks().Find(id)
		changed, err := s.store.Delete(ctx, id)
		if !changed {
			fmt.Fprintf(a.out, "No task with id %d.\n", id)
			return nil
		}
		fmt.Fprintf(a.out, "Deleted %d: %s\n", id, task.Title)
		return err
	})
}

// idCommand parses the single task id argument shared by toggle and rm.
func (a *app) idCommand(ctx context.Context, name string, args []string, fn func(*session, int64) error) error {
	fs := a.newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: webnote %s <id>", name)
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	s, err := a.openSession(ctx, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, id)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func (a *app) exportCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	format := fs.String("format", "", "Output format (json, csv, pdf); defaults to the -o extension or json")
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}
	if *format == "" && *output != "" {
		*format = strings.TrimPrefix(strings.ToLower(filepath.Ext(*output)), ".")
	}
	if *format == "" {
		*format = export.FormatJSON
	}

	s, err := a.openSession(ctx, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	var buf bytes.Buffer
	if err := export.Write(&buf, s.store.Tasks(), *format); err != nil {
		return err
	}
	if *output == "" {
		_, err := a.out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d tasks to %s\n", s.store.Len(), *output)
	return nil
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("webnote "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}
