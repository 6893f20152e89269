package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{in: "debug", want: log.DebugLevel},
		{in: "INFO", want: log.InfoLevel},
		{in: "", want: log.WarnLevel},
		{in: "warning", want: log.WarnLevel},
		{in: "error", want: log.ErrorLevel},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"", "text", "json", "logfmt", "JSON"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "path", "tasks.json")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tasks.json") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, Prefix) {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != "warn" || opts.Format != "text" || opts.ReportCaller || opts.ReportTimestamp {
		t.Errorf("DefaultOptions() = %+v", opts)
	}

	var buf bytes.Buffer
	logger, err := New(&buf, opts)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("default level should be warn: %q", out)
	}
	if strings.Contains(out, "logging_test.go") {
		t.Errorf("caller reported by default: %q", out)
	}
}

func TestNewReportCaller(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = "debug"
	opts.ReportCaller = true
	logger, err := New(&buf, opts)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("loaded tasks")
	if out := buf.String(); !strings.Contains(out, "logging_test.go:") {
		t.Errorf("caller missing: %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("saved tasks", "count", 2)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "saved tasks" {
		t.Errorf("msg: got %v", entry["msg"])
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Options{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Error("expected error for bad format")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	if logger.GetLevel() != log.FatalLevel {
		t.Errorf("level: got %v", logger.GetLevel())
	}
}
