// Package task defines the task entity and its record encoding.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Record keys.
const (
	KeyID          = "id"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyCompleted   = "completed"
)

// Valid task ids. MaxID keeps ids exact as JSON numbers and within int on
// every platform.
const (
	MinID = 1
	MaxID = math.MaxInt32
)

// ErrMalformedRecord is matched by every decode failure.
var ErrMalformedRecord = errors.New("malformed record")

// Task is a single to-do item.
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Record is the key/value form of a task.
type Record map[string]any

// New returns an incomplete task. Text fields are not validated.
func New(id int, title, description string) Task {
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
	}
}

// Render formats the task as "[X] 1: title - description".
func (t Task) Render() string {
	marker := " "
	if t.Completed {
		marker = "X"
	}
	return fmt.Sprintf("[%s] %d: %s - %s", marker, t.ID, t.Title, t.Description)
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return t.Render()
}

// Encode returns the record form of the task.
func (t Task) Encode() Record {
	return Record{
		KeyID:          t.ID,
		KeyTitle:       t.Title,
		KeyDescription: t.Description,
		KeyCompleted:   t.Completed,
	}
}

// MalformedRecordError reports a missing or mistyped record key.
type MalformedRecordError struct {
	Key string // record key at fault
	Err error  // underlying error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedRecord, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

var errMissing = errors.New("missing required key")

// Decode builds a task from its record form.
func Decode(r Record) (Task, error) {
	var t Task

	rawID, ok := r[KeyID]
	if !ok {
		return Task{}, &MalformedRecordError{Key: KeyID, Err: errMissing}
	}
	id, err := decodeID(rawID)
	if err != nil {
		return Task{}, &MalformedRecordError{Key: KeyID, Err: err}
	}
	t.ID = id

	if t.Title, err = stringKey(r, KeyTitle); err != nil {
		return Task{}, err
	}
	if t.Description, err = stringKey(r, KeyDescription); err != nil {
		return Task{}, err
	}

	rawCompleted, ok := r[KeyCompleted]
	if !ok {
		return Task{}, &MalformedRecordError{Key: KeyCompleted, Err: errMissing}
	}
	completed, ok := rawCompleted.(bool)
	if !ok {
		return Task{}, &MalformedRecordError{Key: KeyCompleted, Err: typeError("boolean", rawCompleted)}
	}
	t.Completed = completed

	return t, nil
}

func stringKey(r Record, key string) (string, error) {
	raw, ok := r[key]
	if !ok {
		return "", &MalformedRecordError{Key: key, Err: errMissing}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &MalformedRecordError{Key: key, Err: typeError("string", raw)}
	}
	return s, nil
}

// decodeID accepts the integer shapes produced by Encode and by encoding/json.
func decodeID(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return checkID(int64(n))
	case int64:
		return checkID(n)
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("id %v is not an integer", n)
		}
		if n < MinID || n > MaxID {
			return 0, fmt.Errorf("id %v out of range [%d, %d]", n, MinID, MaxID)
		}
		return int(n), nil
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id %s is not an integer", n)
		}
		return checkID(i)
	default:
		return 0, typeError("integer", v)
	}
}

func checkID(n int64) (int, error) {
	if n < MinID || n > MaxID {
		return 0, fmt.Errorf("id %d out of range [%d, %d]", n, MinID, MaxID)
	}
	return int(n), nil
}

func typeError(want string, got any) error {
	if got == nil {
		return fmt.Errorf("expected %s, got null", want)
	}
	return fmt.Errorf("expected %s, got %T", want, got)
}
