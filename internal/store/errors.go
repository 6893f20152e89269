package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation names an id that is not in the store.
	ErrNotFound = errors.New("task not found")
	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("persist tasks")
	// ErrIDsExhausted is returned by Add when the largest id is already task.MaxID.
	ErrIDsExhausted = errors.New("no task ids left")
)

func notFound(id int) error {
	return fmt.Errorf("task %d: %w", id, ErrNotFound)
}

// PersistenceError reports a failed write of the backing file.
type PersistenceError struct {
	Path string // backing file
	Op   string // marshal, write, chmod, sync, rename
	Err  error  // underlying error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrPersistence, e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
