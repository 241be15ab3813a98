package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.With(String("component", "engine")).Info("cycle complete",
		Int("sessions", 4),
		String("reason", "too many streams"),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO engine: cycle complete") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "sessions=4") {
		t.Fatalf("missing sessions attr in %q", line)
	}
	if !strings.Contains(line, `reason="too many streams"`) {
		t.Fatalf("expected quoted reason in %q", line)
	}
}

func TestConsoleHandlerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	handler := newConsoleHandler(&buf, lvl)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be suppressed at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should pass at warn level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
