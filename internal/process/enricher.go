package process

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lu-zhengda/ports/internal/port"
)

// Enricher fills in command line, start time and user for a process using
// one ps query per field.
type Enricher struct {
	runner port.CmdRunner
	now    func() time.Time
	loc    *time.Location
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithClock overrides the clock used to compute elapsed time.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// WithLocation sets the zone ps prints lstart in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Enricher) { e.loc = loc }
}

// NewEnricher creates a new Enricher.
func NewEnricher(runner port.CmdRunner, opts ...Option) *Enricher {
	e := &Enricher{runner: runner, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich populates whatever fields ps can provide for p. The three lookups
// are independent; a failed lookup leaves its field unset and is returned
// as a warning. Enrich never fails as a whole.
func (e *Enricher) Enrich(ctx context.Context, p *port.ProcessRecord) []error {
	var warnings []error

	if command, err := e.query(ctx, p.PID, "command"); err != nil {
		warnings = append(warnings, err)
	} else {
		p.Command = command
	}

	if lstart, err := e.query(ctx, p.PID, "lstart"); err != nil {
		warnings = append(warnings, err)
	} else if startedAt, err := ParseLstart(lstart, e.loc); err != nil {
		warnings = append(warnings, fmt.Errorf("start time: %w", err))
	} else {
		p.SetStartedAt(startedAt, e.now())
	}

	if user, err := e.query(ctx, p.PID, "user"); err != nil {
		warnings = append(warnings, err)
	} else {
		p.User = user
	}

	return warnings
}

// query runs ps -p <pid> -o <field>= and returns the trimmed output.
func (e *Enricher) query(ctx context.Context, pid int, field string) (string, error) {
	out, err := e.runner.Run(ctx, "ps", "-p", strconv.Itoa(pid), "-o", field+"=")
	if err != nil {
		var cmdErr *port.CmdError
		if !errors.As(err, &cmdErr) {
			return "", port.SystemError("failed to execute ps", err)
		}
		if isPermissionFailure(cmdErr.Stderr) {
			return "", port.PermissionDenied(pid, fmt.Sprintf("ps %s: %s", field, cmdErr.Stderr))
		}
		return "", port.ProcessNotFound(pid, field)
	}

	value := strings.TrimSpace(string(out))
	if value == "" {
		return "", port.ProcessNotFound(pid, field)
	}
	return value, nil
}

func isPermissionFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "not permitted") || strings.Contains(lower, "permission denied")
}
