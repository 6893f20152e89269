package config

import (
	"flag"
)

// flagValues holds raw flag values until the lower layers are loaded.
type flagValues struct {
	configFile    string
	tasksFile     string
	language      string
	logLevel      string
	logFormat     string
	logTimestamps bool
	backupCorrupt bool
}

// bindFlags defines the global configuration flags on fs.
func bindFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVar(&v.configFile, "config", "", "Path to a config file (replaces user and project config)")
	fs.StringVar(&v.tasksFile, "file", DefaultTasksFile, "Path to the tasks file")
	fs.StringVar(&v.language, "lang", DefaultLanguage, "Language for messages (en, uk)")
	fs.StringVar(&v.logLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&v.logFormat, "log-format", DefaultLogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&v.logTimestamps, "log-timestamps", false, "Show timestamps in logs")
	fs.BoolVar(&v.backupCorrupt, "backup-corrupt", DefaultBackupCorrupt, "Back up an unreadable tasks file before replacing it")
	return v
}

// flagToField maps flag names to source field names.
var flagToField = map[string]string{
	"file":           "tasks_file",
	"lang":           "language",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"backup-corrupt": "backup_corrupt",
}

// apply copies explicitly set flags onto cfg.
func (v *flagValues) apply(fs *flag.FlagSet, cfg *Config, sources map[string]ConfigSource) {
	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "file":
			cfg.TasksFile = v.tasksFile
		case "lang":
			cfg.Language = v.language
		case "log-level":
			cfg.LogLevel = v.logLevel
		case "log-format":
			cfg.LogFormat = v.logFormat
		case "log-timestamps":
			cfg.LogTimestamps = v.logTimestamps
		case "backup-corrupt":
			cfg.BackupCorrupt = v.backupCorrupt
		}
		sources[field] = SourceFlag
	})
}
