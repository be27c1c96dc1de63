package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// capture installs a logger writing to a buffer for the duration of a test.
func capture(t *testing.T, level LogLevel, format string) *bytes.Buffer {
	t.Helper()
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	var buf bytes.Buffer
	if err := Init(Config{Level: level, Format: format, Output: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, LevelWarn, "text")
	Info("hidden")
	Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, LevelDebug, "json")
	LogError("convert", "a.py", errors.New("boom"))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if record["file"] != "a.py" || record["phase"] != "convert" || record["error"] != "boom" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestHelpers(t *testing.T) {
	buf := capture(t, LevelDebug, "text")
	LogPhase("parse", "a.py")
	LogConversion("a.py", "3.12", 7, time.Millisecond)
	LogCacheHit("a.py", "abc")
	LogBatchComplete(3, 1, time.Second)
	LogCacheSize("c.db", 2)
	out := buf.String()
	for _, want := range []string{"phase=parse", "python=3.12", "nodes=7", "key=abc", "files=3", "failed=1", "entries=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	prev := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = prev }()
	Info("nothing happens")
	if err := Close(); err != nil {
		t.Errorf("Close without a log file: %v", err)
	}
}

func TestLogFile(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	path := filepath.Join(t.TempDir(), "pyast.log")
	cfg := DefaultConfig()
	cfg.Level = LevelInfo
	cfg.LogFile = path
	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("written to file", "file", "a.py")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	Info("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "written to file") || strings.Contains(out, "after close") {
		t.Errorf("unexpected log file contents:\n%s", out)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelWarn || cfg.Format != "text" || cfg.Output != os.Stderr {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}
