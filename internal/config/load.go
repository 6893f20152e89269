package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasks/tasks.toml or OS-specific config dir)
// 3. Project config file (tasks.toml or .tasks.toml in current directory)
// 4. Environment variables
// 5. CLI flags
//
// A file named by --config (or TASKS_CONFIG) replaces steps 2 and 3.
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
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}

	// Flags are parsed first so --config is known, but applied last.
	flags := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	explicit := flags.configFile
	if explicit == "" {
		explicit = os.Getenv("TASKS_CONFIG")
	}
	if explicit != "" {
		// 2+3. An explicit file replaces the discovered ones
		path := expandPath(explicit)
		if err := loadConfigFile(cfg, path, cws.Sources, SourceFlagFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	} else {
		// 2. Try to load from user config file
		if userConfigFile := findUserConfigFile(); userConfigFile != "" {
			if err := loadConfigFile(cfg, userConfigFile, cws.Sources, SourceUserFile); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
			}
			cws.Files = append(cws.Files, userConfigFile)
		}

		// 3. Try to load from project config file (overrides user config)
		if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
			if err := loadConfigFile(cfg, projectConfigFile, cws.Sources, SourceProjFile); err != nil {
				return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
			}
			cws.Files = append(cws.Files, projectConfigFile)
		}
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, err
	}

	// 5. Apply flags that were explicitly set
	flags.apply(fs, cfg, cws.Sources)

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cws, nil
}

// loadConfigFile loads TOML config from path, copying only the keys the
// file defines and recording their source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	var fileCfg Config
	md, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	set := func(key string, apply func()) {
		if md.IsDefined(key) {
			apply()
			sources[key] = source
		}
	}
	set("tasks_file", func() { cfg.TasksFile = fileCfg.TasksFile })
	set("language", func() { cfg.Language = fileCfg.Language })
	set("log_level", func() { cfg.LogLevel = fileCfg.LogLevel })
	set("log_format", func() { cfg.LogFormat = fileCfg.LogFormat })
	set("log_timestamps", func() { cfg.LogTimestamps = fileCfg.LogTimestamps })
	set("backup_corrupt", func() { cfg.BackupCorrupt = fileCfg.BackupCorrupt })

	return nil
}

// finalizeConfig computes derived values and resolves paths.
func finalizeConfig(cfg *Config) error {
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.TasksFile = resolvePath(cfg.TasksFile, cfg.WorkDir)

	return nil
}
