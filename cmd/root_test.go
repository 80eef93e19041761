// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nibzard/webnote/internal/config"
	"github.com/nibzard/webnote/internal/storage"
)

// testEnv runs the CLI against an isolated home, project and data dir.
type testEnv struct {
	t       *testing.T
	project string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "data")

	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{"STORAGE", "SLOT_KEY", "DSN", "HOOK", "JOURNAL", "LOG_LEVEL", "LOG_FORMAT", "LOG_TIMESTAMPS", "LOG_CALLER"} {
		t.Setenv(config.EnvPrefix+name, "")
	}
	t.Setenv(config.EnvPrefix+"DATA_DIR", dataDir)
	chdir(t, project)

	return &testEnv{t: t, project: project, dataDir: dataDir}
}

func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	a := &app{out: &out, errOut: &errOut}
	err := a.run(context.Background(), args)
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("webnote %v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func (e *testEnv) add(title string, extra ...string) int64 {
	e.t.Helper()
	out := e.mustRun(append(append([]string{"add"}, extra...), title)...)
	var id int64
	if _, err := fmt.Sscanf(out, "Added %d:", &id); err != nil {
		e.t.Fatalf("cannot parse id from %q: %v", out, err)
	}
	return id
}

func (e *testEnv) slotPath() string {
	return filepath.Join(e.dataDir, "todos.json")
}

// TestRun tests the main entry points that need no task list.
func TestRun(t *testing.T) {
	e := newTestEnv(t)

	t.Run("shows help with --help flag", func(t *testing.T) {
		out, _, err := e.run("--help")
		if err != nil {
			t.Fatalf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out, "Commands:") {
			t.Errorf("help output missing commands: %q", out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		out, _, err := e.run("help")
		if err != nil || !strings.Contains(out, "-storage") {
			t.Errorf("help command: %v %q", err, out)
		}
	})

	t.Run("shows version", func(t *testing.T) {
		for _, args := range [][]string{{"--version"}, {"version"}} {
			out, _, err := e.run(args...)
			if err != nil {
				t.Fatalf("%v: %v", args, err)
			}
			if !strings.Contains(out, "webnote version "+Version) {
				t.Errorf("%v: got %q", args, out)
			}
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		_, errOut, err := e.run("unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		if !strings.Contains(errOut, "Unknown command: unknown-command") {
			t.Errorf("stderr: %q", errOut)
		}
	})

	t.Run("unknown global flag returns error", func(t *testing.T) {
		if _, _, err := e.run("--no-such-flag"); err == nil {
			t.Error("expected error for unknown flag")
		}
	})

	t.Run("tui requires a TTY", func(t *testing.T) {
		_, _, err := e.run()
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("expected TTY error, got %v", err)
		}
	})
}

func TestTaskLifecycle(t *testing.T) {
	e := newTestEnv(t)

	milk := e.add("Buy milk", "-d", "2%")
	dog := e.add("Walk dog")
	if dog <= milk {
		t.Fatalf("ids not increasing: %d then %d", milk, dog)
	}

	out := e.mustRun("ls", "-v")
	for _, want := range []string{
		fmt.Sprintf("[ ] %d  Buy milk", milk),
		"      2%",
		fmt.Sprintf("[ ] %d  Walk dog", dog),
		"2 pending, 0 completed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	out = e.mustRun("done", fmt.Sprint(milk))
	if !strings.Contains(out, "completed") {
		t.Errorf("toggle output: %q", out)
	}
	if out := e.mustRun("ls", "-done"); !strings.Contains(out, "Buy milk") || strings.Contains(out, "Walk dog") {
		t.Errorf("ls -done:\n%s", out)
	}
	if out := e.mustRun("ls", "-pending"); strings.Contains(out, "Buy milk") || !strings.Contains(out, "Walk dog") {
		t.Errorf("ls -pending:\n%s", out)
	}

	e.mustRun("rm", fmt.Sprint(dog))

	data, err := os.ReadFile(e.slotPath())
	if err != nil {
		t.Fatal(err)
	}
	list, err := storage.Decode(data)
	if err != nil {
		t.Fatalf("stored value does not decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != milk || !list[0].Completed || list[0].Description != "2%" {
		t.Errorf("stored list = %+v", list)
	}
}

func TestAddBlankTitle(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("add", "   ")
	if !strings.Contains(out, "Nothing added") {
		t.Errorf("add blank: %q", out)
	}
	if _, err := os.Stat(e.slotPath()); !os.IsNotExist(err) {
		t.Errorf("blank add must not write the slot: %v", err)
	}
}

func TestUnknownAndInvalidIDs(t *testing.T) {
	e := newTestEnv(t)
	e.add("A")

	for _, cmd := range []string{"toggle", "rm"} {
		out, _, err := e.run(cmd, "12345")
		if err != nil {
			t.Errorf("%s unknown id: unexpected error %v", cmd, err)
		}
		if !strings.Contains(out, "No task with id 12345") {
			t.Errorf("%s unknown id output: %q", cmd, out)
		}

		if _, _, err := e.run(cmd, "abc"); err == nil || !strings.Contains(err.Error(), "invalid task id") {
			t.Errorf("%s abc: expected invalid id error, got %v", cmd, err)
		}
		if _, _, err := e.run(cmd); err == nil {
			t.Errorf("%s without id: expected usage error", cmd)
		}
	}
}

func TestEmptyList(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("ls")
	if !strings.Contains(out, "No tasks yet") {
		t.Errorf("ls on empty list: %q", out)
	}
}

func TestInvalidSlotTextIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	if err := os.MkdirAll(e.dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.slotPath(), []byte("this is not json"), 0644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := e.run("ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "No tasks yet") {
		t.Errorf("ls output: %q", out)
	}
	if !strings.Contains(errOut, "ignoring stored task list") {
		t.Errorf("expected warning on stderr, got %q", errOut)
	}

	if _, _, err := e.run("doctor"); err == nil {
		t.Error("doctor should fail on an invalid stored value")
	}

	e.add("Fresh start")
	data, _ := os.ReadFile(e.slotPath())
	if _, err := storage.Decode(data); err != nil {
		t.Errorf("slot not replaced by a valid list: %v", err)
	}
}

func TestExport(t *testing.T) {
	e := newTestEnv(t)
	e.add("Buy milk", "-d", "2%")

	out := e.mustRun("export", "-format", "csv")
	if !strings.HasPrefix(out, "id,title,description,completed\n") || !strings.Contains(out, "Buy milk,2%,false") {
		t.Errorf("csv export:\n%s", out)
	}

	out = e.mustRun("export")
	if _, err := storage.Decode([]byte(out)); err != nil {
		t.Errorf("json export does not decode: %v", err)
	}

	pdfPath := filepath.Join(e.project, "tasks.pdf")
	e.mustRun("export", "-o", pdfPath)
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("-o tasks.pdf did not produce a PDF")
	}

	if _, _, err := e.run("export", "-format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDoctorCommand(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("doctor")
	if !strings.Contains(out, "All checks passed") || !strings.Contains(out, "Empty") {
		t.Errorf("doctor on fresh env:\n%s", out)
	}

	e.add("A")
	out = e.mustRun("doctor", "-v")
	if !strings.Contains(out, "Valid: 1 pending, 0 completed") || !strings.Contains(out, "A") {
		t.Errorf("doctor -v:\n%s", out)
	}

	out, _, err := e.run("--hook", filepath.Join(e.project, "missing-hook"), "doctor")
	if err == nil || !strings.Contains(out, "Not runnable") {
		t.Errorf("doctor with missing hook: %v\n%s", err, out)
	}

	_, _, err = e.run("--storage", "mysql", "doctor")
	if err == nil {
		t.Error("doctor should fail for mysql without dsn")
	}
}

func TestTailCommand(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("tail")
	if !strings.Contains(out, "No journal files found") {
		t.Errorf("tail before changes: %q", out)
	}

	id := e.add("A")
	e.mustRun("toggle", fmt.Sprint(id))

	out = e.mustRun("tail", "-n", "1")
	if !strings.Contains(out, `"op":"toggle"`) || strings.Contains(out, `"op":"add"`) {
		t.Errorf("tail -n 1 shows the latest run only:\n%s", out)
	}

	e.mustRun("--journal=false", "add", "B")
	out = e.mustRun("tail")
	if strings.Contains(out, `"B"`) {
		t.Errorf("journal disabled but entry written:\n%s", out)
	}
}

func TestConfigCommand(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("--slot", "work", "config")
	if !strings.Contains(out, `slot_key`) || !strings.Contains(out, `"work"`) || !strings.Contains(out, "(flag)") {
		t.Errorf("config output:\n%s", out)
	}
	if !strings.Contains(out, "(environment)") {
		t.Errorf("data_dir should come from the environment:\n%s", out)
	}
}

func TestInitCommand(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun("init")
	for _, name := range []string{config.ConfigFileName, storage.SchemaFile} {
		if _, err := os.Stat(filepath.Join(e.project, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
		if !strings.Contains(out, "Wrote") {
			t.Errorf("init output: %q", out)
		}
	}

	marker := filepath.Join(e.project, config.ConfigFileName)
	if err := os.WriteFile(marker, []byte("slot_key = \"mine\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out = e.mustRun("init")
	if !strings.Contains(out, "Skipped") {
		t.Errorf("second init should skip existing files: %q", out)
	}
	data, _ := os.ReadFile(marker)
	if string(data) != "slot_key = \"mine\"\n" {
		t.Error("init overwrote an existing config without -force")
	}

	e.mustRun("init", "-force")
	data, _ = os.ReadFile(marker)
	if string(data) != config.ExampleConfig() {
		t.Error("init -force did not overwrite")
	}
}

func TestEphemeralStorage(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("-ephemeral", "add", "gone")
	if _, err := os.Stat(e.slotPath()); !os.IsNotExist(err) {
		t.Errorf("ephemeral add wrote the file slot: %v", err)
	}
}

func TestSlotKeySeparatesLists(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun("--slot", "work", "add", "Ship it")
	e.mustRun("add", "Buy milk")

	if out := e.mustRun("--slot", "work", "ls"); strings.Contains(out, "Buy milk") || !strings.Contains(out, "Ship it") {
		t.Errorf("work list:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(e.dataDir, "work.json")); err != nil {
		t.Errorf("work slot not written: %v", err)
	}
}

func TestHookRunsOnChange(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook script is POSIX shell")
	}
	e := newTestEnv(t)
	log := filepath.Join(e.project, "hook.log")
	script := filepath.Join(e.project, "hook.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho \"$1 $WEBNOTE_TASK_TITLE\" >> \""+log+"\"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	e.add("Buy milk")
	e.mustRun("--hook", script, "add", "Walk dog")
	e.mustRun("--hook", script, "toggle", "999")

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "add Walk dog" {
		t.Errorf("hook log = %q", data)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
