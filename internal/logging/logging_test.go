package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_LevelFallback(t *testing.T) {
	logger, closeFn, err := New(Options{Level: "chatty"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()

	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, want warning", logger.GetLevel())
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()

	logger.WithField("provider", "gemini").Info("provider attempt succeeded")
	out := buf.String()
	if !strings.Contains(out, "provider attempt succeeded") || !strings.Contains(out, "provider=gemini") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNew_JSONWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "intertest.log")
	var buf bytes.Buffer

	opts := DefaultOptions()
	opts.Level = "debug"
	opts.Format = "json"
	opts.File = path

	logger, closeFn, err := New(opts, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.WithField("run_id", "r1").Debug("skipping provider without credential")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"r1"`) {
		t.Errorf("file missing entry: %s", data)
	}
	if buf.String() != string(data) {
		t.Errorf("console and file output differ")
	}
}

func TestMuteConsole_FileKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intertest.log")
	var buf bytes.Buffer

	opts := DefaultOptions()
	opts.Level = "warn"
	opts.File = path

	logger, closeFn, err := New(opts, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	restore := logger.MuteConsole()
	logger.Warn("provider attempt failed")
	if buf.Len() != 0 {
		t.Errorf("console should be muted, got %q", buf.String())
	}

	restore()
	logger.Warn("after restore")
	if !strings.Contains(buf.String(), "after restore") {
		t.Errorf("console should receive entries after restore, got %q", buf.String())
	}

	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "provider attempt failed") {
		t.Errorf("file missing muted entry: %s", data)
	}
}
