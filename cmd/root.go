// Package cmd implements the CLI command structure for webnote.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/webnote/internal/config"
	"github.com/nibzard/webnote/internal/hooks"
	"github.com/nibzard/webnote/internal/logging"
	"github.com/nibzard/webnote/internal/storage"
	"github.com/nibzard/webnote/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the webnote CLI.
func Run(ctx context.Context, args []string) error {
	return (&app{out: os.Stdout, errOut: os.Stderr}).run(ctx, args)
}

type app struct {
	out    io.Writer
	errOut io.Writer
	cws    *config.ConfigWithSources
}

func (a *app) cfg() *config.Config {
	return a.cws.Config
}

func (a *app) run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("webnote", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() {
		a.printUsage(fs, a.errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	a.cws = cws
	if *help {
		a.printUsage(fs, a.out)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	// No command launches the TUI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "ls", "list":
		return a.lsCommand(ctx, remainingArgs)
	case "toggle", "done":
		return a.toggleCommand(ctx, remainingArgs)
	case "rm", "delete":
		return a.rmCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "tail":
		return a.tailCommand(ctx, remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "init":
		return a.initCommand(remainingArgs)
	case "version":
		return a.versionCommand()
	case "help":
		a.printUsage(fs, a.out)
		return nil
	default:
		fmt.Fprintf(a.errOut, "Unknown command: %s\n", subcommand)
		a.printUsage(fs, a.errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session is one opened task list: the slot, its persister and the store
// with every configured listener subscribed.
type session struct {
	cfg       *config.Config
	logger    *log.Logger
	slot      storage.Slot
	persister *storage.Persister
	journal   *logging.Journal
	store     *todo.Store
}

type sessionOptions struct {
	// Console log writer; defaults to the app's error output.
	logOut io.Writer
	// Minimum console level override.
	logLevel string
	// Hook output; nil means the process stdout and stderr.
	hookOut io.Writer
}

func (a *app) openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg := a.cfg()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	consoleOpts := cfg.ConsoleOptions()
	if opts.logLevel != "" {
		consoleOpts.Level = opts.logLevel
	}
	logOut := opts.logOut
	if logOut == nil {
		logOut = a.errOut
	}
	logger := logging.NewConsole(logOut, consoleOpts)

	slot, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	s := &session{
		cfg:       cfg,
		logger:    logger,
		slot:      slot,
		persister: storage.NewPersister(slot, logger),
	}

	storeOpts := []todo.Option{todo.WithListener(s.persister)}
	if cfg.Journal && cfg.JournalDir() != "" {
		journal, err := logging.OpenJournal(cfg.JournalDir(), slot.Key(), slot.Location())
		if err != nil {
			slot.Close()
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		s.journal = journal
		storeOpts = append(storeOpts, todo.WithListener(journal))
	}
	if cfg.HookCommand != "" {
		storeOpts = append(storeOpts, todo.WithListener(&hooks.Hook{
			Command:  cfg.HookCommand,
			Location: slot.Location(),
			WorkDir:  cfg.ProjectRoot,
			Stdout:   opts.hookOut,
			Stderr:   opts.hookOut,
		}))
	}

	s.store = todo.Initialize(ctx, s.persister, storeOpts...)
	logger.Debug("opened task list", "slot", slot.Location(), "tasks", s.store.Len())
	return s, nil
}

func (s *session) Close() error {
	return errors.Join(s.journal.Close(), s.slot.Close())
}

func (a *app) printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "webnote - a single-page task list in your terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  webnote [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                     Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  add [-d text] <title>   Add a task")
	fmt.Fprintln(w, "  ls [-pending|-done]     List tasks in insertion order")
	fmt.Fprintln(w, "  toggle <id>             Toggle a task between pending and completed (alias: done)")
	fmt.Fprintln(w, "  rm <id>                 Delete a task (alias: delete)")
	fmt.Fprintln(w, "  export [-format f]      Export tasks as json, csv or pdf")
	fmt.Fprintln(w, "  doctor                  Check config, storage and the stored task list")
	fmt.Fprintln(w, "  tail                    Show the latest change journal")
	fmt.Fprintln(w, "  config                  Print the effective configuration and its sources")
	fmt.Fprintln(w, "  init                    Write an example webnote.toml and the task schema")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(a.errOut)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s* variables override config files (e.g. %sSTORAGE, %sDATA_DIR)\n",
		config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
}

func (a *app) versionCommand() error {
	fmt.Fprintf(a.out, "webnote version %s\n", Version)
	return nil
}

// unexpectedArgs reports extra positional arguments.
func unexpectedArgs(args []string) error {
	return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
}
