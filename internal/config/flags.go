package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/webnote/internal/storage"
)

// parseFlags defines the global flags on fs, parses args and applies the
// flags that were explicitly set. If fs is nil a new set is used.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("webnote", flag.ContinueOnError)
	}

	// Flags bind to copies so that unset flags never clobber lower layers.
	var (
		storageName, dataDir, slotKey, dsn, hook string
		logLevel, logFormat                      string
		journal, logTimestamps, logCaller        bool
		ephemeral                                bool
	)
	fs.StringVar(&storageName, "storage", cfg.Storage, "Storage driver (file, mysql, postgres, memory)")
	fs.StringVar(&dataDir, "data-dir", cfg.DataDir, "Directory for the file slot and journal")
	fs.StringVar(&slotKey, "slot", cfg.SlotKey, "Slot key the task list is stored under")
	fs.StringVar(&dsn, "dsn", cfg.DSN, "Database DSN for mysql or postgres storage")
	fs.StringVar(&hook, "hook", cfg.HookCommand, "Command to run after each change")
	fs.BoolVar(&journal, "journal", cfg.Journal, "Record changes in the event journal")
	fs.BoolVar(&ephemeral, "ephemeral", false, "Keep tasks in memory only (same as -storage memory)")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -ephemeral picks the memory driver, so it cannot be combined with a
	// different -storage.
	storageSet := false
	fs.Visit(func(f *flag.Flag) { storageSet = storageSet || f.Name == "storage" })
	if ephemeral && storageSet && !strings.EqualFold(strings.TrimSpace(storageName), storage.DriverMemory) {
		return fmt.Errorf("-ephemeral conflicts with -storage %s", storageName)
	}

	// Map flag names to source field names
	flagToField := map[string]string{
		"storage":        "storage",
		"ephemeral":      "storage",
		"data-dir":       "data_dir",
		"slot":           "slot_key",
		"dsn":            "dsn",
		"hook":           "hook_command",
		"journal":        "journal",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "storage":
			cfg.Storage = storageName
		case "ephemeral":
			if !ephemeral {
				return
			}
			cfg.Storage = storage.DriverMemory
		case "data-dir":
			cfg.DataDir = dataDir
		case "slot":
			cfg.SlotKey = slotKey
		case "dsn":
			cfg.DSN = dsn
		case "hook":
			cfg.HookCommand = hook
		case "journal":
			cfg.Journal = journal
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log-caller":
			cfg.LogCaller = logCaller
		}
		if sources == nil {
			return
		}
		if field, ok := flagToField[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})

	return nil
}
