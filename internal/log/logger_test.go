package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentSession, Output: &buf})

	l.Info("loaded", FieldEntries, 3)
	out := buf.String()
	if !strings.Contains(out, "component=session") || !strings.Contains(out, "entries=3") {
		t.Fatalf("unexpected log line: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Debug("saved")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("expected component override, got: %s", buf.String())
	}
}

func TestStructuredLoggerAndContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})
	sl := NewStructuredLogger(l)

	sl.LogEntryCreated(context.Background(), "abc", "plastic", 1.5, "recycling", 2)
	if !strings.Contains(buf.String(), "waste_type=plastic") || !strings.Contains(buf.String(), "attachments=2") {
		t.Fatalf("missing entry fields: %s", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpSave, nil)
	if !strings.Contains(buf.String(), `error="disk full"`) || !strings.Contains(buf.String(), "operation=save") {
		t.Fatalf("missing error fields: %s", buf.String())
	}

	ctx := context.WithValue(context.Background(), LoggerContextKey, l)
	if FromContext(ctx) != l {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
