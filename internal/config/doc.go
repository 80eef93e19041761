// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.webnote/webnote.toml or OS-specific config directory)
// 3. Project config file (webnote.toml or .webnote.toml in the working directory)
// 4. Environment variables (WEBNOTE_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.webnote/webnote.toml (preferred)
// - Windows: %APPDATA%\webnote\webnote.toml
// - macOS: ~/Library/Application Support/webnote/webnote.toml
// - Linux/BSD: $XDG_CONFIG_HOME/webnote/webnote.toml or ~/.config/webnote/webnote.toml
//
// Project-level config locations (overrides user config):
// - ./webnote.toml (preferred)
// - ./.webnote.toml
package config
