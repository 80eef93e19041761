package config

import (
	"path/filepath"
	"strconv"

	"github.com/nibzard/webnote/internal/logging"
	"github.com/nibzard/webnote/internal/storage"
)

// StorageOptions returns the options used to open the task slot.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:  c.Storage,
		DataDir: c.DataDir,
		DSN:     c.DSN,
		Key:     c.SlotKey,
	}
}

// JournalDir returns the base directory for event journals.
func (c *Config) JournalDir() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "journal")
}

// ConsoleOptions returns the console logger settings.
func (c *Config) ConsoleOptions() logging.ConsoleOptions {
	return logging.ConsoleOptions{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Timestamps: c.LogTimestamps,
		Caller:     c.LogCaller,
		Prefix:     "webnote",
	}
}

// Setting is one effective configuration value and where it came from.
type Setting struct {
	Name   string
	Value  string
	Source ConfigSource
}

// Settings lists every configurable value in a stable order. The DSN is
// redacted since it usually carries a password.
func (cws *ConfigWithSources) Settings() []Setting {
	c := cws.Config
	values := map[string]string{
		"storage":        c.Storage,
		"data_dir":       c.DataDir,
		"slot_key":       c.SlotKey,
		"dsn":            redact(c.DSN),
		"hook_command":   c.HookCommand,
		"journal":        strconv.FormatBool(c.Journal),
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"log_timestamps": strconv.FormatBool(c.LogTimestamps),
		"log_caller":     strconv.FormatBool(c.LogCaller),
	}
	settings := make([]Setting, 0, len(values))
	for _, name := range configFields() {
		settings = append(settings, Setting{Name: name, Value: values[name], Source: cws.Sources[name]})
	}
	return settings
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "(set)"
}
