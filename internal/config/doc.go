// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.tasks/tasks.toml or OS-specific config directory)
// 3. Project config file (tasks.toml or .tasks.toml in the working directory)
// 4. Environment variables (TASKS_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
// When --config names a file, it replaces both the user and the project file.
//
// User-level config locations:
// - ~/.tasks/tasks.toml (preferred)
// - Windows: %APPDATA%\tasks\tasks.toml
// - macOS: ~/Library/Application Support/tasks/tasks.toml
// - Linux/BSD: $XDG_CONFIG_HOME/tasks/tasks.toml or ~/.config/tasks/tasks.toml
//
// Project-level config locations (overrides user config):
// - ./tasks.toml (preferred)
// - ./.tasks.toml
package config
