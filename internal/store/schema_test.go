package store

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		content   *string
		wantValid bool
		wantTasks int
		wantPaths []string
	}{
		{name: "missing file", content: nil, wantValid: true},
		{name: "empty file", content: ptr(""), wantValid: true},
		{
			name:      "valid records",
			content:   ptr(`[{"id": 1, "title": "a", "description": "b", "completed": false}, {"id": 2, "title": "c", "description": "d", "completed": true}]`),
			wantValid: true,
			wantTasks: 2,
		},
		{name: "not json", content: ptr("nope"), wantValid: false, wantPaths: []string{""}},
		{name: "not an array", content: ptr(`{"tasks": []}`), wantValid: false, wantPaths: []string{""}},
		{
			name:      "wrong types",
			content:   ptr(`[{"id": 1, "title": "a", "description": "b", "completed": false}, {"id": 2, "title": 3, "description": "d", "completed": "no"}]`),
			wantValid: false,
			wantPaths: []string{"[1].title", "[1].completed"},
		},
		{
			name:      "missing key",
			content:   ptr(`[{"id": 1, "title": "a", "completed": false}]`),
			wantValid: false,
			wantPaths: []string{"[0]"},
		},
		{
			name:      "zero id",
			content:   ptr(`[{"id": 0, "title": "a", "description": "", "completed": false}]`),
			wantValid: false,
			wantPaths: []string{"[0].id"},
		},
		{
			name:      "id above int32",
			content:   ptr(`[{"id": 1, "title": "a", "description": "", "completed": false}, {"id": 2147483648, "title": "b", "description": "", "completed": false}]`),
			wantValid: false,
			wantPaths: []string{"[1].id"},
		},
		{
			name:      "largest id",
			content:   ptr(`[{"id": 2147483647, "title": "a", "description": "", "completed": false}]`),
			wantValid: true,
			wantTasks: 1,
		},
		{
			name:      "duplicate id",
			content:   ptr(`[{"id": 3, "title": "a", "description": "", "completed": false}, {"id": 3, "title": "b", "description": "", "completed": false}]`),
			wantValid: false,
			wantTasks: 2,
			wantPaths: []string{"[1].id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if tt.content != nil {
				writeFile(t, path, *tt.content)
			}

			result, err := Validate(path)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Valid: got %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if result.Missing != (tt.content == nil) {
				t.Errorf("Missing: got %v", result.Missing)
			}
			if result.Tasks != tt.wantTasks {
				t.Errorf("Tasks: got %d, want %d", result.Tasks, tt.wantTasks)
			}

			var paths []string
			for _, err := range result.Errors {
				if ve, ok := err.(*ValidationError); ok {
					paths = append(paths, ve.Path)
				}
			}
			for _, want := range tt.wantPaths {
				if !containsString(paths, want) {
					t.Errorf("expected an error at %q, got paths %q", want, paths)
				}
			}
		})
	}
}

func TestValidateReadError(t *testing.T) {
	if _, err := Validate(t.TempDir()); err == nil {
		t.Fatal("expected error when validating a directory")
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"#":              "",
		"/0":             "[0]",
		"/2/completed":   "[2].completed",
		"#/1/title":      "[1].title",
		"/0/a~1b":        "[0].a/b",
		"/0/tilde~0name": "[0].tilde~name",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Path: "[0].id", Err: errString("bad")}
	if got := err.Error(); got != "[0].id: bad" {
		t.Errorf("Error: got %q", got)
	}
	bare := &ValidationError{Err: errString("bad")}
	if got := bare.Error(); !strings.HasPrefix(got, "bad") {
		t.Errorf("Error: got %q", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
