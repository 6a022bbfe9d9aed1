package port

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -destination=../mocks/cmdrunner.go -package=mocks github.com/lu-zhengda/ports/internal/port CmdRunner

// Scanner defines the interface for discovering listening ports.
type Scanner interface {
	ListPorts(ctx context.Context) ([]PortEntry, error)
}

// CmdRunner abstracts shell command execution for testability.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// lsofArgs selects TCP sockets in LISTEN state, skips host and port name
// resolution, and asks for pid/command/name fields in -F format.
var lsofArgs = []string{"-iTCP", "-sTCP:LISTEN", "-n", "-P", "-F", "pcn"}

// LsofScanner implements Scanner using lsof.
type LsofScanner struct {
	runner CmdRunner
}

// NewLsofScanner creates a new scanner backed by lsof.
func NewLsofScanner(runner CmdRunner) *LsofScanner {
	return &LsofScanner{runner: runner}
}

// ListPorts returns all TCP listeners in the order lsof reports them.
func (s *LsofScanner) ListPorts(ctx context.Context) ([]PortEntry, error) {
	out, err := s.runner.Run(ctx, "lsof", lsofArgs...)
	if err != nil {
		var cmdErr *CmdError
		if errors.As(err, &cmdErr) {
			// lsof exits 1 without output when nothing matched.
			if cmdErr.ExitCode == 1 && cmdErr.Stderr == "" && len(out) == 0 {
				return nil, nil
			}
			if cmdErr.Stderr == "" {
				return nil, SystemError(fmt.Sprintf("lsof failed with exit status %d", cmdErr.ExitCode), nil)
			}
			return nil, SystemError("lsof failed: "+cmdErr.Stderr, nil)
		}
		return nil, SystemError("failed to execute lsof", err)
	}
	return ParseFieldOutput(string(out)), nil
}
