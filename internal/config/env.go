package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WEBNOTE_"

// envFields maps environment variable suffixes to config field names.
var envFields = []struct {
	env   string
	field string
}{
	{"STORAGE", "storage"},
	{"DATA_DIR", "data_dir"},
	{"SLOT_KEY", "slot_key"},
	{"DSN", "dsn"},
	{"HOOK", "hook_command"},
	{"JOURNAL", "journal"},
	{"LOG_LEVEL", "log_level"},
	{"LOG_FORMAT", "log_format"},
	{"LOG_TIMESTAMPS", "log_timestamps"},
	{"LOG_CALLER", "log_caller"},
}

// loadFromEnv overrides config from WEBNOTE_* environment variables.
// Empty variables are ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, e := range envFields {
		v := os.Getenv(EnvPrefix + e.env)
		if v == "" {
			continue
		}
		if err := setField(cfg, e.field, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, e.env, err)
		}
		if sources != nil {
			sources[e.field] = SourceEnv
		}
	}
	return nil
}

// setField assigns a string value to the named field.
func setField(cfg *Config, field, value string) error {
	switch field {
	case "storage":
		cfg.Storage = value
	case "data_dir":
		cfg.DataDir = value
	case "slot_key":
		cfg.SlotKey = value
	case "dsn":
		cfg.DSN = value
	case "hook_command":
		cfg.HookCommand = value
	case "log_level":
		cfg.LogLevel = value
	case "log_format":
		cfg.LogFormat = value
	case "journal", "log_timestamps", "log_caller":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		switch field {
		case "journal":
			cfg.Journal = b
		case "log_timestamps":
			cfg.LogTimestamps = b
		case "log_caller":
			cfg.LogCaller = b
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// parseBool parses a boolean from a string.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
