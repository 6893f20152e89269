package config

import (
	"fmt"
	"os"
	"strconv"
)

// loadFromEnv overrides config from TASKS_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(env, field string, target *bool) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("environment %s: invalid boolean %q", env, v)
		}
		*target = b
		sources[field] = SourceEnv
		return nil
	}

	setString("TASKS_FILE", "tasks_file", &cfg.TasksFile)
	setString("TASKS_LANG", "language", &cfg.Language)
	setString("TASKS_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TASKS_LOG_FORMAT", "log_format", &cfg.LogFormat)

	if err := setBool("TASKS_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps); err != nil {
		return err
	}
	return setBool("TASKS_BACKUP_CORRUPT", "backup_corrupt", &cfg.BackupCorrupt)
}
