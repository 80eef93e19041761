package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/tabwriter"

	"github.com/nibzard/webnote/internal/config"
	"github.com/nibzard/webnote/internal/logging"
	"github.com/nibzard/webnote/internal/storage"
	"github.com/nibzard/webnote/internal/utils"
)

// doctorCommand checks config, storage reachability and the stored task list.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	cfg := a.cfg()
	w := a.out
	allOK := true

	fmt.Fprintln(w, "webnote doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	if file := a.cws.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "  File: %s\n", file)
	} else {
		fmt.Fprintln(w, "  File: (none, using defaults)")
	}
	for _, key := range a.cws.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "⚠️  Some checks failed.")
		return fmt.Errorf("doctor checks failed")
	}
	fmt.Fprintf(w, "  ✅ Storage: %s, slot %q\n", cfg.Storage, cfg.SlotKey)
	fmt.Fprintln(w)

	if cfg.Storage == storage.DriverFile {
		fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
		if !checkDir(w, cfg.DataDir) {
			allOK = false
		}
		fmt.Fprintln(w)
	}

	slot, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		fmt.Fprintln(w, "Slot:")
		fmt.Fprintf(w, "  ❌ %v\n", err)
		fmt.Fprintln(w)
		allOK = false
	} else {
		defer slot.Close()
		fmt.Fprintf(w, "Slot: %s\n", slot.Location())
		list, err := storage.NewPersister(slot, nil).Inspect(ctx)
		switch {
		case errors.Is(err, storage.ErrAbsent):
			fmt.Fprintln(w, "  ⚠️  Empty (created on the first change)")
		case err != nil:
			fmt.Fprintf(w, "  ❌ Stored value is not a valid task list: %v\n", err)
			fmt.Fprintln(w, "     It will be ignored and replaced on the next change.")
			allOK = false
		default:
			pending, completed := list.Counts()
			fmt.Fprintf(w, "  ✅ Valid: %d pending, %d completed\n", pending, completed)
			if *verbose {
				printTaskList(w, list, true)
			}
		}
		fmt.Fprintln(w)

		if cfg.Journal && cfg.JournalDir() != "" {
			dir, _ := logging.JournalDir(cfg.JournalDir(), slot.Key(), slot.Location())
			fmt.Fprintf(w, "Journal: %s\n", dir)
			if _, err := os.Stat(dir); err != nil {
				fmt.Fprintln(w, "  ⚠️  Not found (created on the first change)")
			} else {
				fmt.Fprintln(w, "  ✅ OK")
			}
			fmt.Fprintln(w)
		}
	}

	if cfg.HookCommand != "" {
		fmt.Fprintf(w, "Hook: %s\n", cfg.HookCommand)
		if !checkCommand(w, cfg.HookCommand) {
			allOK = false
		}
		fmt.Fprintln(w)
	}

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func checkDir(w io.Writer, path string) bool {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(w, "  ⚠️  Not found (created on the first change)")
		return true
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return false
	case !info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is not a directory")
		return false
	}
	fmt.Fprintln(w, "  ✅ OK")
	return true
}

func checkCommand(w io.Writer, command string) bool {
	path, err := exec.LookPath(command)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Not runnable: %v\n", err)
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !utils.IsExecutable(path, info) {
		fmt.Fprintf(w, "  ❌ Not executable: %s\n", path)
		return false
	}
	fmt.Fprintf(w, "  ✅ %s\n", path)
	return true
}

func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("tail")
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	cfg := a.cfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.JournalDir() == "" {
		fmt.Fprintln(a.out, "No journal: data_dir is not set.")
		return nil
	}
	slot, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	dir, err := logging.JournalDir(cfg.JournalDir(), slot.Key(), slot.Location())
	slot.Close()
	if err != nil {
		return err
	}

	path, err := logging.FindLatestJournal(dir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}
	if path == "" {
		fmt.Fprintln(a.out, "No journal files found.")
		return nil
	}

	fmt.Fprintf(a.out, "Tailing: %s\n", path)
	if *follow {
		fmt.Fprintln(a.out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(a.out)

	return logging.Tail(ctx, a.out, path, *n, *follow)
}

// configCommand prints each effective value with its source.
func (a *app) configCommand(args []string) error {
	fs := a.newFlagSet("config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	if file := a.cws.GetConfigFile(); file != "" {
		fmt.Fprintf(a.out, "# config file: %s\n", file)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, s := range a.cws.Settings() {
		fmt.Fprintf(tw, "%s\t%q\t(%s)\n", s.Name, s.Value, s.Source)
	}
	return tw.Flush()
}

// initCommand writes an example config and the task list schema into the
// project directory. Existing files are kept unless -force is given.
func (a *app) initCommand(args []string) error {
	fs := a.newFlagSet("init")
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	root := a.cfg().ProjectRoot
	files := []struct {
		name    string
		content string
	}{
		{config.ConfigFileName, config.ExampleConfig()},
		{storage.SchemaFile, storage.Schema()},
	}
	for _, f := range files {
		path := filepath.Join(root, f.name)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Fprintf(a.out, "Skipped %s (exists, use -force to overwrite)\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		fmt.Fprintf(a.out, "Wrote %s\n", path)
	}
	return nil
}
