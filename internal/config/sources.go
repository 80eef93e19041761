package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// findProjectConfigFile returns webnote.toml or .webnote.toml from the
// working directory, whichever exists first.
func findProjectConfigFile() string {
	return firstFile(ConfigFileName, "."+ConfigFileName)
}

// findUserConfigFile checks ~/.webnote/webnote.toml, then the OS config dir.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".webnote", ConfigFileName))
	}
	if dir := osUserConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "webnote", ConfigFileName))
	}
	return firstFile(candidates...)
}

func firstFile(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// osUserConfigDir returns the per-user config directory, or "".
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

func setDefaults(cfg *Config) {
	*cfg = Config{
		Storage:   DefaultStorage,
		DataDir:   DefaultDataDir,
		SlotKey:   DefaultSlotKey,
		Journal:   DefaultJournal,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// GetConfigFile returns the file that supplied settings: the project file if
// present, else the user file.
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws.ProjectFile != "" {
		return cws.ProjectFile
	}
	return cws.UserFile
}
