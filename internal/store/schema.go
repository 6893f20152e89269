package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/task"
)

const schemaURL = "tasks.schema.json"

// fileSchemaJSON describes the backing file: an array of task records.
// Unknown record keys are tolerated.
const fileSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "description", "completed"],
    "properties": {
      "id": {"type": "integer", "minimum": 1, "maximum": 2147483647},
      "title": {"type": "string"},
      "description": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func fileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(fileSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid   bool
	Missing bool // backing file does not exist
	Tasks   int  // records found
	Errors  []error
}

// Validate checks the file at path against the task file schema and the
// record rules used by Open, reporting every problem found. Unlike Open it
// never falls back to an empty collection.
func Validate(path string) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Missing = true
			return result, nil
		}
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	doc, err := decodeDocument(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: err})
		return result, nil
	}

	sch, err := fileSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
		return result, nil
	}

	items, _ := doc.([]any)
	result.Tasks = len(items)
	seen := make(map[int]int, len(items))
	for i, item := range items {
		path := fmt.Sprintf("[%d]", i)
		rec, _ := item.(map[string]any)
		t, err := task.Decode(task.Record(rec))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: path, Err: err})
			continue
		}
		if first, dup := seen[t.ID]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (first at [%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
	}

	return result, nil
}

// parseTasks decodes a non-empty backing file. Any problem fails the whole parse.
func parseTasks(data []byte) ([]task.Task, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	sch, err := fileSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("tasks file does not match schema: %w", err)
	}

	items, _ := doc.([]any)
	tasks := make([]task.Task, 0, len(items))
	seen := make(map[int]bool, len(items))
	for i, item := range items {
		rec, _ := item.(map[string]any)
		t, err := task.Decode(task.Record(rec))
		if err != nil {
			return nil, fmt.Errorf("record [%d]: %w", i, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("record [%d]: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// decodeDocument parses exactly one JSON value, keeping numbers exact.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse tasks file: trailing data after JSON value")
	}
	return doc, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/2/completed" into "[2].completed".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
