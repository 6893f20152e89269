package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceFlagFile ConfigSource = "config flag file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultTasksFile     = "tasks.json"
	DefaultLanguage      = "en"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultBackupCorrupt = true
)

// Config holds the full configuration for tasks.
type Config struct {
	// Backing file for the task list. Relative paths resolve against WorkDir.
	TasksFile string `toml:"tasks_file" validate:"required"`

	// Language of user-facing text.
	Language string `toml:"language" validate:"oneof=en uk"`

	// Logging configuration
	LogLevel      string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string `toml:"log_format" validate:"oneof=text json logfmt"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Copy an unreadable tasks file aside before starting over.
	BackupCorrupt bool `toml:"backup_corrupt"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"tasks_file",
		"language",
		"log_level",
		"log_format",
		"log_timestamps",
		"backup_corrupt",
	}
}
