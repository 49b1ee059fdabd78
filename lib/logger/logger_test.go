package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriterLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWriterLogger(buf, "")
	l.Output(INFO, 1, "hello\n")
	l.Output(ERROR, 1, "broken")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expect 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[INFO]") || !strings.HasSuffix(lines[0], "hello") {
		t.Errorf("unexpected info line: %s", lines[0])
	}
	if !strings.Contains(lines[0], "[logger_test.go:") {
		t.Errorf("caller missing: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR]") {
		t.Errorf("unexpected error line: %s", lines[1])
	}
}

func TestFatalDoesNotExit(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWriterLogger(buf, "")
	l.Output(FATAL, 1, "still alive")
	if !strings.Contains(buf.String(), "[FATAL]") {
		t.Error(buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	origin := DefaultLogger
	DefaultLogger = NewWriterLogger(buf, "")
	defer func() { DefaultLogger = origin }()

	Infof("port %d", 6399)
	Warn("warn")
	if !strings.Contains(buf.String(), "port 6399") || !strings.Contains(buf.String(), "[WARN]") {
		t.Error(buf.String())
	}
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFileLogger(&Settings{
		Path: dir,
		Name: "simplesocket",
		Ext:  "log",
	})
	if err != nil {
		t.Fatal(err)
	}
	l.Output(INFO, 1, "to file")
	if err := l.Close(); err != nil {
		t.Error(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "simplesocket.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Errorf("unexpected file content: %s", b)
	}

	if _, err := NewFileLogger(&Settings{Path: dir}); err == nil {
		t.Error("expect error for empty name")
	}
}

func TestLevelString(t *testing.T) {
	if ERROR.String() != "ERROR" || LogLevel(42).String() != "LEVEL(42)" {
		t.Error("level string")
	}
}
