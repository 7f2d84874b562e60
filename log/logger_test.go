package log

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// TestLogger_Named verifies name composition and that the child shares
// the parent's writer and settings.
func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	parent := Discard()
	parent.writer = &buf
	parent.Level = Debug
	parent.NoColor = true

	child := parent.Named("monitor")
	if child.Name != "monitor" {
		t.Fatalf("child name mismatch: %q", child.Name)
	}

	grandchild := child.Named("queue")
	if grandchild.Name != "monitor/queue" {
		t.Fatalf("nested name mismatch: %q", grandchild.Name)
	}

	grandchild.Info("coalesced %d events", 7)
	line := buf.String()
	if !strings.Contains(line, "[monitor/queue]") {
		t.Fatalf("output missing component name: %q", line)
	}
	if !strings.Contains(line, "coalesced 7 events") {
		t.Fatalf("output missing message: %q", line)
	}
}

// TestLogger_Levels verifies that entries below the configured level are
// suppressed.
func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := Discard()
	logger.writer = &buf
	logger.Level = Warn
	logger.NoColor = true

	logger.Debug("dropped")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("entries below Warn should be suppressed: %q", buf.String())
	}

	logger.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("Error entry missing: %q", buf.String())
	}
}

// TestLogger_Discard verifies the silent logger used by tests.
func TestLogger_Discard(t *testing.T) {
	logger := Discard()

	if logger.writer != io.Discard {
		t.Fatal("Discard should write to io.Discard")
	}
	if logger.Level != Fatal {
		t.Fatalf("Discard should suppress everything below Fatal, got %v", logger.Level)
	}

	// Safe to use without further setup.
	logger.Error("never seen")
	logger.Named("child").Warn("never seen")
}
