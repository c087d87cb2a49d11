package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Info).(*logfmtLogger)
	logger.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger.With(F("component", "hub")).Info("frame received", F("id", 3), F("type", "result"), Err(errors.New("bad frame")))
	logger.Debug("hidden")

	got := buf.String()
	want := `ts=2025-01-02T03:04:05Z level=info msg="frame received" component=hub id=3 type=result error="bad frame"` + "\n"
	if got != want {
		t.Fatalf("unexpected log line:\n got=%q\nwant=%q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"":        Info,
		"chatty":  Info,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNopDiscardsEverything(t *testing.T) {
	logger := OrNop(nil)
	if logger.Enabled(Error) {
		t.Fatalf("expected nop logger to be disabled")
	}
	logger.Error("ignored")
}

func TestNewFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hubview.log")
	logger, closer, err := NewFile(path, Debug)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logger.Debug("first")
	logger.Warn("second")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "level=warn") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}

func TestNewRunIDIsUnique(t *testing.T) {
	first, second := NewRunID(), NewRunID()
	if first == "" || first == second {
		t.Fatalf("expected distinct run ids, got %q and %q", first, second)
	}
}
