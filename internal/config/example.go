package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags

# Task list file (relative to the working directory; ~ and $VAR are expanded)
tasks_file = "tasks.json"

# Language for menus and messages: en or uk
language = "en"

# Logging goes to stderr: debug, info, warn, error
log_level = "warn"

# Log format: text, json, or logfmt
log_format = "text"

# Prefix log lines with timestamps
log_timestamps = false

# Copy an unreadable tasks file to <tasks_file>.corrupt before starting over
backup_corrupt = true
`
}
