package logging

import (
	"bytes"
	"log/slog"
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
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_TeesAndFilters(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: slog.LevelWarn, Dir: t.TempDir(), Tee: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeFn()

	logger.Info("classified", "dir", "a")
	logger.Warn("Error processing image", "path", "b.png")
	got := buf.String()
	if strings.Contains(got, "classified") {
		t.Errorf("info line passed a warn level: %q", got)
	}
	if !strings.Contains(got, "Error processing image") || !strings.Contains(got, "path=b.png") {
		t.Errorf("tee got %q", got)
	}
	if slog.Default() != logger {
		t.Error("New() did not install the default logger")
	}
}
