package port

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised while scanning and inspecting processes.
type ErrorKind int

const (
	// KindSystem covers tools that could not run or exited abnormally.
	KindSystem ErrorKind = iota
	// KindPermissionDenied means ps refused to inspect a process owned by
	// another user.
	KindPermissionDenied
	// KindProcessNotFound means the process exited between the scan and the
	// inspection, or ps returned nothing for it.
	KindProcessNotFound
	// KindFormat means tool output did not have the expected shape.
	KindFormat
	// KindIO wraps low-level I/O failures.
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindProcessNotFound:
		return "process not found"
	case KindFormat:
		return "format error"
	case KindIO:
		return "I/O error"
	default:
		return "system error"
	}
}

// Error is the error type shared by the scanner and the enricher.
type Error struct {
	Kind    ErrorKind
	PID     int // set for ProcessNotFound / PermissionDenied
	Message string
	Err     error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindProcessNotFound:
		msg = fmt.Sprintf("process not found: PID %d", e.PID)
		if e.Message != "" {
			msg += " (" + e.Message + ")"
		}
	case KindPermissionDenied:
		msg = "permission denied: " + e.Message
	case KindIO:
		msg = "I/O error: " + e.Message
	default:
		msg = e.Message
	}
	if e.Err != nil && e.Kind != KindProcessNotFound {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can compare
// against the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.PID == 0 && t.Message == "" && t.Err == nil
}

// Hint returns a remediation line shown after fatal errors.
func (e *Error) Hint() string {
	switch e.Kind {
	case KindPermissionDenied:
		return "Try running with elevated privileges (sudo) to see all process details"
	case KindProcessNotFound:
		return "The process may have terminated. Try running the command again"
	case KindIO:
		return "Check file permissions and system resources"
	default:
		return "Check system permissions and ensure lsof and ps are installed and accessible"
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrSystem           = &Error{Kind: KindSystem}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrProcessNotFound  = &Error{Kind: KindProcessNotFound}
	ErrFormat           = &Error{Kind: KindFormat}
	ErrIO               = &Error{Kind: KindIO}
)

// SystemError creates a KindSystem error.
func SystemError(msg string, err error) *Error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// PermissionDenied creates a KindPermissionDenied error for pid.
func PermissionDenied(pid int, msg string) *Error {
	return &Error{Kind: KindPermissionDenied, PID: pid, Message: msg}
}

// ProcessNotFound creates a KindProcessNotFound error for pid. The detail
// names the field that could not be read.
func ProcessNotFound(pid int, detail string) *Error {
	return &Error{Kind: KindProcessNotFound, PID: pid, Message: detail}
}

// FormatError creates a KindFormat error.
func FormatError(format string, args ...any) *Error {
	return &Error{Kind: KindFormat, Message: fmt.Sprintf(format, args...)}
}

// IOError wraps err as a KindIO error.
func IOError(msg string, err error) *Error {
	return &Error{Kind: KindIO, Message: msg, Err: err}
}

// Hint returns the remediation hint for err, falling back to the generic
// system hint for errors that did not originate here.
func Hint(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Hint()
	}
	return ErrSystem.Hint()
}
