package port

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAppTypeString(t *testing.T) {
	tests := []struct {
		app  AppType
		want string
	}{
		{AppNodeJs, "Node.js"},
		{AppDotNet, ".NET"},
		{AppPhp, "PHP"},
		{AppUnknown, "Unknown"},
		{AppType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.app.String(); got != tt.want {
			t.Errorf("AppType(%d).String(): got %q, want %q", tt.app, got, tt.want)
		}
	}
}

func TestParseAppType(t *testing.T) {
	for _, a := range AppTypes {
		got, err := ParseAppType(a.String())
		if err != nil {
			t.Errorf("ParseAppType(%q): unexpected error %v", a.String(), err)
			continue
		}
		if got != a {
			t.Errorf("ParseAppType(%q): got %v, want %v", a.String(), got, a)
		}
	}

	aliases := map[string]AppType{"node": AppNodeJs, "dotnet": AppDotNet, "GOLANG": AppGo, "httpd": AppApache}
	for in, want := range aliases {
		if got, err := ParseAppType(in); err != nil || got != want {
			t.Errorf("ParseAppType(%q): got (%v, %v), want %v", in, got, err, want)
		}
	}

	if _, err := ParseAppType("cobol"); err == nil {
		t.Error("expected error for unknown app type")
	}
}

func TestSetStartedAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 13, 0, 0, 500, time.UTC)

	p := NewProcessRecord(1, "node")
	p.SetStartedAt(now.Add(-90*time.Minute), now)
	if p.StartedAt == nil || p.Elapsed == nil {
		t.Fatal("expected StartedAt and Elapsed to be set")
	}
	if *p.Elapsed != 90*time.Minute {
		t.Errorf("elapsed: got %v, want 1h30m", *p.Elapsed)
	}

	future := NewProcessRecord(2, "node")
	future.SetStartedAt(now.Add(time.Hour), now)
	if future.StartedAt == nil {
		t.Error("StartedAt should be kept for a future start time")
	}
	if future.Elapsed != nil {
		t.Errorf("Elapsed should be unset for a future start time, got %v", *future.Elapsed)
	}
}

func TestDisplayCommand(t *testing.T) {
	p := NewProcessRecord(1, "node")
	if got := p.DisplayCommand(); got != "node" {
		t.Errorf("got %q, want fallback to name", got)
	}
	p.Command = "node server.js"
	if got := p.DisplayCommand(); got != "node server.js" {
		t.Errorf("got %q, want command", got)
	}
}

func TestErrorKinds(t *testing.T) {
	nf := ProcessNotFound(42, "command")
	if !errors.Is(nf, ErrProcessNotFound) {
		t.Error("expected ProcessNotFound to match its sentinel")
	}
	if errors.Is(nf, ErrSystem) {
		t.Error("ProcessNotFound must not match the system sentinel")
	}
	if got, want := nf.Error(), "process not found: PID 42 (command)"; got != want {
		t.Errorf("message: got %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("scan: %w", SystemError("lsof failed", nil))
	if !errors.Is(wrapped, ErrSystem) {
		t.Error("expected wrapped system error to match")
	}
	if got := Hint(wrapped); got != ErrSystem.Hint() {
		t.Errorf("hint: got %q", got)
	}
	if got := Hint(PermissionDenied(1, "ps")); got == ErrSystem.Hint() {
		t.Error("permission denied should have its own hint")
	}
}
