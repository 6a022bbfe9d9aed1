package logs

import (
	"bytes"
	"os"
	"testing"
)

func TestLogger_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Out: &buf, Level: LevelDebug})

	l.Error("lsof failed: %s", "boom")
	l.Hint("check lsof")
	l.Warn("failed to get details for PID %d", 42)
	l.Info("scanned %d ports", 3)
	l.Debug("running %s", "ps")

	want := "error: lsof failed: boom\n" +
		"hint: check lsof\n" +
		"warning: failed to get details for PID 42\n" +
		"scanned 3 ports\n" +
		"debug: running ps\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestLogger_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Out: &buf, Level: LevelWarn})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	if got, want := buf.String(), "warning: shown\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	l.SetLevel(LevelError)
	l.Warn("hidden")
	l.Error("shown")
	l.Hint("shown too")
	if got, want := buf.String(), "error: shown\nhint: shown too\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want Level
	}{
		{0, LevelWarn},
		{1, LevelInfo},
		{2, LevelDebug},
		{5, LevelDebug},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d): got %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestColorEnabled_Overrides(t *testing.T) {
	if ColorEnabled(os.Stderr, true, true) {
		t.Error("--no-color must disable colour")
	}
	if ColorEnabled(os.Stderr, false, false) {
		t.Error("color_enabled: false must disable colour")
	}
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(os.Stderr, true, false) {
		t.Error("NO_COLOR must disable colour")
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not write anywhere visible.
	Discard().Error("nothing")
}
