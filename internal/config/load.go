package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/webnote/internal/logging"
	"github.com/nibzard/webnote/internal/storage"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.webnote/webnote.toml or OS-specific config dir)
// 3. Project config file (webnote.toml or .webnote.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}
	cws := &ConfigWithSources{Config: cfg, Sources: sources}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		unknown, err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile)
		if err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		cws.UserFile = userConfigFile
		cws.Unknown = append(cws.Unknown, unknown...)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		unknown, err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile)
		if err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		cws.ProjectFile = projectConfigFile
		cws.Unknown = append(cws.Unknown, unknown...)
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage",
		"data_dir",
		"slot_key",
		"dsn",
		"hook_command",
		"journal",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes TOML from path over cfg. Only keys present in the
// file are overwritten and marked with source. Keys no field consumes are
// returned as unknown.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) ([]string, error) {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)
	return unknown, nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.SlotKey = strings.TrimSpace(cfg.SlotKey)

	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.DataDir = resolvePath(cfg.DataDir, cfg.ProjectRoot)

	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if !knownDriver(c.Storage) {
		return fmt.Errorf("storage: unknown driver %q (expected %s)", c.Storage, strings.Join(storage.Drivers(), "|"))
	}
	if c.SlotKey == "" {
		return fmt.Errorf("slot_key: must not be empty")
	}
	if c.Storage == storage.DriverFile && c.DataDir == "" {
		return fmt.Errorf("data_dir: required for file storage")
	}
	if (c.Storage == storage.DriverMySQL || c.Storage == storage.DriverPostgres) && c.DSN == "" {
		return fmt.Errorf("dsn: required for %s storage", c.Storage)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	return nil
}

func knownDriver(name string) bool {
	for _, d := range storage.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}
