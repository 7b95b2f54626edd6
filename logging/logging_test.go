package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestColorsOffForBuffers(t *testing.T) {
	if Colors(&bytes.Buffer{}) {
		t.Fatal("Colors(buffer) = true, want false")
	}
}

func TestHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(false, &buf)
	log.Debug("hidden")
	log.Info("shown", "file", "sections/header.liquid")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message logged at info level:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file=sections/header.liquid") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("colors written to a buffer:\n%s", out)
	}

	buf.Reset()
	New(true, &buf).Debug("visible", "err", errors.New("boom"))
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("debug output missing:\n%s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError, slog.LevelError + 1, 12} {
		if log.Enabled(context.Background(), level) {
			t.Fatalf("Discard logger enabled at level %v, want disabled at every level", level)
		}
	}
}
