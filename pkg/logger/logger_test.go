package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestForFallsBackToDefault(t *testing.T) {
	if For(context.Background()) != slog.Default() {
		t.Fatalf("For on a bare context should return slog.Default()")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := SetContext(context.Background(), l)
	if For(ctx) != l {
		t.Fatalf("For did not return the logger stored by SetContext")
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, slog.LevelWarn, "json")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.Warn("shown", "image", "koala")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"image":"koala"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := New(&buf, slog.LevelInfo, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
