package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesTimestampLevelMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	logger.Debug("hidden")
	logger.Error("install failed", "app", "Foo")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %q", out)
	}
	for _, want := range []string{"time=", "level=ERROR", `msg="install failed"`, "app=Foo"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %q", want, out)
		}
	}
}

func TestInit_AppendsToFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "app.log")
	prev := Logger
	t.Cleanup(func() {
		Close()
		Logger = prev
		slog.SetDefault(prev)
	})

	var mirror bytes.Buffer
	if err := Init(path, "debug", &mirror); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Logger.Info("first")
	Close()

	if err := Init(path, "debug", nil); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	Logger.Warn("second")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log error = %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "msg=first") || !strings.Contains(content, "msg=second") {
		t.Errorf("expected both records in log, got %q", content)
	}
	if !strings.Contains(mirror.String(), "msg=first") {
		t.Errorf("expected mirror to receive first record, got %q", mirror.String())
	}
}
