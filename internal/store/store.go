// Package store keeps the task collection in sync with its backing file.
//
// The whole collection is loaded once by Open and rewritten after every
// successful mutation. There is no locking: a store owns its file for the
// life of the process, and concurrent writers overwrite each other.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/task"
)

// DefaultFile is the conventional backing file name.
const DefaultFile = "tasks.json"

// CorruptSuffix is appended to the backing file path when an unreadable
// file is backed up before being replaced.
const CorruptSuffix = ".corrupt"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load fallbacks and saves.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCorruptBackup copies an unparsable backing file to <path>.corrupt
// before the store starts over with an empty collection.
func WithCorruptBackup(enabled bool) Option {
	return func(s *Store) {
		s.backupCorrupt = enabled
	}
}

// Store is an ordered, file-backed task collection.
type Store struct {
	path          string
	tasks         []task.Task
	logger        *log.Logger
	backupCorrupt bool
}

// Open loads the store from path.
//
// A missing or empty file yields an empty store. A file that cannot be
// parsed as a list of valid task records also yields an empty store; the
// reason is logged and nothing is returned to the caller. Other read
// failures are returned.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}

	s := &Store{
		path:   path,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("tasks file not found, starting empty", "path", path)
			return s, nil
		}
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	tasks, err := parseTasks(data)
	if err != nil {
		s.logger.Warn("tasks file is unreadable, starting with an empty list", "path", path, "err", err)
		if s.backupCorrupt {
			s.backup(data)
		}
		return s, nil
	}

	s.tasks = tasks
	s.logger.Debug("loaded tasks", "path", path, "count", len(tasks))
	return s, nil
}

func (s *Store) backup(data []byte) {
	dst := s.path + CorruptSuffix
	if err := os.WriteFile(dst, data, 0644); err != nil {
		s.logger.Error("backup of unreadable tasks file failed", "path", dst, "err", err)
		return
	}
	s.logger.Info("backed up unreadable tasks file", "path", dst)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// List returns a copy of the tasks in store order.
func (s *Store) List() []task.Task {
	return s.snapshot()
}

// Add appends a task with the next id and persists the store.
// The id is one more than the largest id present, or 1 for an empty store,
// so the id of a deleted last task is handed out again. When the largest id
// is task.MaxID nothing is written and ErrIDsExhausted is returned.
func (s *Store) Add(title, description string) (task.Task, error) {
	id := nextID(s.tasks)
	if id > task.MaxID {
		return task.Task{}, fmt.Errorf("add task: %w", ErrIDsExhausted)
	}
	t := task.New(id, title, description)
	next := append(s.snapshot(), t)
	if err := s.commit(next); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Update replaces the title and description of a task.
func (s *Store) Update(id int, title, description string) error {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	next := s.snapshot()
	next[i].Title = title
	next[i].Description = description
	return s.commit(next)
}

// Delete removes a task, keeping the order of the rest.
func (s *Store) Delete(id int) error {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	next := make([]task.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	return s.commit(next)
}

// MarkComplete marks a task as completed. Completing a completed task
// rewrites the file unchanged.
func (s *Store) MarkComplete(id int) error {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	next := s.snapshot()
	next[i].Completed = true
	return s.commit(next)
}

// Save writes the whole collection to the backing file.
func (s *Store) Save() error {
	return s.write(s.tasks)
}

// commit persists next and only then makes it the current collection.
func (s *Store) commit(next []task.Task) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// write replaces the backing file through a synced temp file and a rename.
func (s *Store) write(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.path, Op: "marshal", Err: err}
	}
	data = append(data, '\n')

	perm := os.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := s.path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}
	// The umask applies on create; the backing file's mode is restored here.
	if err := f.Chmod(perm); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Op: "chmod", Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Op: "sync", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Op: "rename", Err: err}
	}

	s.logger.Debug("saved tasks", "path", s.path, "count", len(tasks))
	return nil
}

func (s *Store) index(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func nextID(tasks []task.Task) int {
	maxID := task.MinID - 1
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
