// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points every config source at empty temp locations.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, env := range []string{
		"TASKS_CONFIG", "TASKS_FILE", "TASKS_LANG", "TASKS_LOG_LEVEL",
		"TASKS_LOG_FORMAT", "TASKS_LOG_TIMESTAMPS", "TASKS_BACKUP_CORRUPT",
	} {
		t.Setenv(env, "")
	}
	work := t.TempDir()
	t.Chdir(work)
	return home
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("tasks", flag.ContinueOnError)
}

func writeTOML(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TasksFile != DefaultTasksFile {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, DefaultTasksFile)
	}
	if cfg.Language != DefaultLanguage {
		t.Errorf("Language: got %q, want %q", cfg.Language, DefaultLanguage)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.BackupCorrupt != DefaultBackupCorrupt {
		t.Errorf("BackupCorrupt: got %v, want %v", cfg.BackupCorrupt, DefaultBackupCorrupt)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	wd, _ := os.Getwd()
	if want := filepath.Join(wd, DefaultTasksFile); cfg.TasksFile != want {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, want)
	}
	if cfg.WorkDir != wd {
		t.Errorf("WorkDir: got %q, want %q", cfg.WorkDir, wd)
	}
	for _, field := range configFields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, cws.Sources[field])
		}
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
}

func TestLoadPriority(t *testing.T) {
	home := isolate(t)

	writeTOML(t, filepath.Join(home, ".tasks", "tasks.toml"), `
tasks_file = "user.json"
language = "uk"
log_level = "info"
`)
	writeTOML(t, "tasks.toml", `
tasks_file = "project.json"
log_format = "json"
`)
	t.Setenv("TASKS_LOG_LEVEL", "debug")
	t.Setenv("TASKS_BACKUP_CORRUPT", "false")

	cws, err := LoadWithSources(newFlagSet(), []string{"--file", "flag.json", "ls"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	wd, _ := os.Getwd()
	if want := filepath.Join(wd, "flag.json"); cfg.TasksFile != want {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, want)
	}
	if cfg.Language != "uk" {
		t.Errorf("Language: got %q, want uk", cfg.Language)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if cfg.BackupCorrupt {
		t.Error("BackupCorrupt: got true, want false from environment")
	}

	wantSources := map[string]ConfigSource{
		"tasks_file":     SourceFlag,
		"language":       SourceUserFile,
		"log_format":     SourceProjFile,
		"log_level":      SourceEnv,
		"backup_corrupt": SourceEnv,
		"log_timestamps": SourceDefault,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("source of %s: got %q, want %q", field, got, want)
		}
	}
	if len(cws.Files) != 2 {
		t.Errorf("Files: got %v, want user and project file", cws.Files)
	}
}

func TestLoadLeavesPositionalArgs(t *testing.T) {
	isolate(t)

	fs := newFlagSet()
	if _, err := Load(fs, []string{"--lang", "uk", "add", "title", "--not-a-flag"}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := strings.Join(fs.Args(), " ")
	if got != "add title --not-a-flag" {
		t.Errorf("Args: got %q", got)
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	home := isolate(t)

	writeTOML(t, filepath.Join(home, ".tasks", "tasks.toml"), `language = "uk"`)
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	writeTOML(t, explicit, `tasks_file = "/tmp/elsewhere.json"`)

	cws, err := LoadWithSources(newFlagSet(), []string{"--config", explicit})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if cws.Config.Language != DefaultLanguage {
		t.Errorf("user file should be skipped, Language = %q", cws.Config.Language)
	}
	if cws.Config.TasksFile != "/tmp/elsewhere.json" {
		t.Errorf("TasksFile: got %q", cws.Config.TasksFile)
	}
	if cws.Sources["tasks_file"] != SourceFlagFile {
		t.Errorf("source: got %q", cws.Sources["tasks_file"])
	}

	t.Run("via environment", func(t *testing.T) {
		t.Setenv("TASKS_CONFIG", explicit)
		cfg, err := Load(newFlagSet(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.TasksFile != "/tmp/elsewhere.json" {
			t.Errorf("TasksFile: got %q", cfg.TasksFile)
		}
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{name: "bad toml", toml: `language = `, wantErr: "loading project config file"},
		{name: "unknown key", toml: `colour = "red"`, wantErr: "unknown keys: colour"},
		{name: "bad language", toml: `language = "fr"`, wantErr: "language"},
		{name: "bad log level", args: []string{"--log-level", "loud"}, wantErr: "log_level"},
		{name: "bad log format", env: map[string]string{"TASKS_LOG_FORMAT": "xml"}, wantErr: "log_format"},
		{name: "bad env bool", env: map[string]string{"TASKS_LOG_TIMESTAMPS": "maybe"}, wantErr: "TASKS_LOG_TIMESTAMPS"},
		{name: "unknown flag", args: []string{"--nope"}, wantErr: "parsing flags"},
		{name: "missing explicit file", args: []string{"--config", "/does/not/exist.toml"}, wantErr: "loading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if tt.toml != "" {
				writeTOML(t, "tasks.toml", tt.toml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := newFlagSet()
			fs.SetOutput(new(strings.Builder))

			_, err := Load(fs, tt.args)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlagSet(), []string{"--lang", " UK ", "--log-level", "INFO"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "uk" || cfg.LogLevel != "info" {
		t.Errorf("got language %q, log level %q", cfg.Language, cfg.LogLevel)
	}
}

func TestResolvePath(t *testing.T) {
	home := isolate(t)
	t.Setenv("TASKS_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "tasks.json", want: filepath.Join("/work", "tasks.json")},
		{in: "/abs/tasks.json", want: "/abs/tasks.json"},
		{in: "~/tasks.json", want: filepath.Join(home, "tasks.json")},
		{in: "~", want: home},
		{in: "$TASKS_TEST_DIR/t.json", want: "/data/t.json"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.in, "/work"); got != tt.want {
			t.Errorf("resolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	isolate(t)
	writeTOML(t, "tasks.toml", ExampleConfig())

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if cws.Sources["language"] != SourceProjFile {
		t.Errorf("example config keys should be read, language source = %q", cws.Sources["language"])
	}
}
