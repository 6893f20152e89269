// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/menu"
	"github.com/nibzard/tasks-go/internal/messages"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrInvalidFile is returned by validate when the tasks file has problems.
var ErrInvalidFile = errors.New("tasks file is invalid")

// streams bundles the terminal the CLI talks to.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// env is what every subcommand gets after startup.
type env struct {
	streams
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
	msg    *messages.Printer
}

// Run executes the tasks CLI on the process streams.
func Run(ctx context.Context, args []string) error {
	return RunWithIO(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO executes the tasks CLI reading from stdin and writing to stdout
// and stderr.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	s := streams{in: stdin, out: stdout, err: stderr}

	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	}

	logOpts := logging.DefaultOptions()
	logOpts.Level = cws.Config.LogLevel
	logOpts.Format = cws.Config.LogFormat
	logOpts.ReportTimestamp = cws.Config.LogTimestamps
	logOpts.ReportCaller = logOpts.Level == "debug"
	logger, err := logging.New(stderr, logOpts)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	e := &env{
		streams: s,
		cws:     cws,
		cfg:     cws.Config,
		logger:  logger,
		msg:     messages.New(cws.Config.Language),
	}
	logConfig(e)

	switch subcommand {
	case "menu":
		return menuCommand(ctx, e, remainingArgs)
	case "ls":
		return lsCommand(e, remainingArgs)
	case "add":
		return addCommand(e, remainingArgs)
	case "edit":
		return editCommand(e, remainingArgs)
	case "rm":
		return rmCommand(e, remainingArgs)
	case "done":
		return doneCommand(e, remainingArgs)
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "validate":
		return validateCommand(e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func logConfig(e *env) {
	e.logger.Debug("configuration loaded",
		"tasks_file", e.cfg.TasksFile,
		"language", e.cfg.Language,
		"files", e.cws.Files,
	)
	fields := make([]string, 0, len(e.cws.Sources))
	for field := range e.cws.Sources {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		e.logger.Debug("config source", "field", field, "source", e.cws.Sources[field])
	}
}

// openStore loads the configured tasks file.
func openStore(e *env) (*store.Store, error) {
	s, err := store.Open(e.cfg.TasksFile,
		store.WithLogger(e.logger),
		store.WithCorruptBackup(e.cfg.BackupCorrupt),
	)
	if err != nil {
		return nil, fmt.Errorf("opening tasks file: %w", err)
	}
	return s, nil
}

// menuCommand runs the interactive menu.
func menuCommand(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	return menu.New(s, e.in, e.out, e.msg).Run(ctx)
}

// lsCommand prints every task.
func lsCommand(e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	menu.WriteList(e.out, e.msg, s.List())
	return nil
}

// addCommand appends a task.
func addCommand(e *env, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: tasks add <title> [description]")
	}
	title, description := args[0], optional(args, 1)

	s, err := openStore(e)
	if err != nil {
		return err
	}
	t, err := s.Add(title, description)
	if errors.Is(err, store.ErrIDsExhausted) {
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.IDsExhausted))
		return err
	}
	if err != nil {
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.SaveFailed, err))
		return err
	}
	fmt.Fprintln(e.out, e.msg.Sprintf(messages.TaskAdded, t.Title))
	return nil
}

// editCommand replaces the title and description of a task.
func editCommand(e *env, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: tasks edit <id> <title> [description]")
	}
	id, err := parseID(e, args[0])
	if err != nil {
		return err
	}

	s, err := openStore(e)
	if err != nil {
		return err
	}
	return report(e, id, s.Update(id, args[1], optional(args, 2)), messages.TaskUpdated)
}

// rmCommand deletes a task.
func rmCommand(e *env, args []string) error {
	id, err := singleID(e, args, "usage: tasks rm <id>")
	if err != nil {
		return err
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	return report(e, id, s.Delete(id), messages.TaskDeleted)
}

// doneCommand marks a task complete.
func doneCommand(e *env, args []string) error {
	id, err := singleID(e, args, "usage: tasks done <id>")
	if err != nil {
		return err
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	return report(e, id, s.MarkComplete(id), messages.TaskCompleted)
}

// tuiCommand launches the full-screen list.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !ui.IsTTY(e.out) {
		return ui.ErrNotTTY
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, s, e.msg, e.in, e.out)
}

// validateCommand checks a tasks file without loading it into a store.
func validateCommand(e *env, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := e.cfg.TasksFile
	if len(args) == 1 {
		path = args[0]
	}

	result, err := store.Validate(path)
	if err != nil {
		return err
	}
	switch {
	case result.Missing:
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.ValidateMissing, path))
	case result.Valid:
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.ValidateOK, path, result.Tasks))
	default:
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.ValidateFailed, path))
		for _, verr := range result.Errors {
			fmt.Fprintf(e.out, "  - %v\n", verr)
		}
		return fmt.Errorf("%s: %w", path, ErrInvalidFile)
	}
	return nil
}

// configCommand prints the resolved configuration and where each value
// came from, or an example config file.
func configCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("tasks config", flag.ContinueOnError)
	fs.SetOutput(e.err)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *example {
		fmt.Fprint(e.out, config.ExampleConfig())
		return nil
	}

	values := map[string]string{
		"tasks_file":     e.cfg.TasksFile,
		"language":       e.cfg.Language,
		"log_level":      e.cfg.LogLevel,
		"log_format":     e.cfg.LogFormat,
		"log_timestamps": strconv.FormatBool(e.cfg.LogTimestamps),
		"backup_corrupt": strconv.FormatBool(e.cfg.BackupCorrupt),
	}
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(e.out, "%-15s = %-30q (%s)\n", field, values[field], e.cws.Sources[field])
	}
	if len(e.cws.Files) > 0 {
		fmt.Fprintln(e.out)
		fmt.Fprintln(e.out, "Config files:")
		for _, f := range e.cws.Files {
			fmt.Fprintf(e.out, "  %s\n", f)
		}
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasks version %s\n", Version)
	return nil
}

// report prints the outcome of an id-based operation. Unlike the menu, a
// missing task is an error for one-shot commands.
func report(e *env, id int, err error, successKey string) error {
	if rerr := menu.Report(e.out, e.msg, id, err, successKey); rerr != nil {
		return rerr
	}
	return err
}

func singleID(e *env, args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	return parseID(e, args[0])
}

func parseID(e *env, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		fmt.Fprintln(e.out, e.msg.Sprintf(messages.InvalidID, s))
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasks - a personal task tracker backed by a JSON file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu                          Interactive menu (default command)")
	fmt.Fprintln(w, "  ls                            List tasks")
	fmt.Fprintln(w, "  add <title> [description]     Add a task")
	fmt.Fprintln(w, "  edit <id> <title> [desc]      Replace a task's title and description")
	fmt.Fprintln(w, "  rm <id>                       Delete a task")
	fmt.Fprintln(w, "  done <id>                     Mark a task as done")
	fmt.Fprintln(w, "  tui                           Launch terminal UI")
	fmt.Fprintln(w, "  validate [file]               Check the tasks file")
	fmt.Fprintln(w, "  config [-example]             Show resolved configuration")
	fmt.Fprintln(w, "  version                       Show version information")
	fmt.Fprintln(w, "  help                          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
