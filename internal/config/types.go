package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files that were read, empty when absent.
	UserFile    string
	ProjectFile string

	// Keys present in a config file that no field consumes.
	Unknown []string
}

// Default values.
const (
	DefaultStorage   = "file"
	DefaultDataDir   = "~/.webnote"
	DefaultSlotKey   = "todos"
	DefaultJournal   = true
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// ConfigFileName is the name of user and project config files.
const ConfigFileName = "webnote.toml"

// Config holds the full configuration for webnote.
type Config struct {
	// Storage
	Storage string `toml:"storage"`
	DataDir string `toml:"data_dir"`
	SlotKey string `toml:"slot_key"`
	DSN     string `toml:"dsn"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Event journal under <data_dir>/journal
	Journal bool `toml:"journal"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
