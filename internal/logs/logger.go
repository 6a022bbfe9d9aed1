// Package logs prints user-facing diagnostics to stderr.
package logs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Level controls how much is printed. Higher levels print more.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// LevelFromVerbosity maps the number of -v flags to a level.
// Warnings are always shown.
func LevelFromVerbosity(v int) Level {
	switch {
	case v <= 0:
		return LevelWarn
	case v == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Options configures a Logger.
type Options struct {
	// Out defaults to os.Stderr.
	Out   io.Writer
	Level Level
	Color bool
}

type styles struct {
	prefixError lipgloss.Style
	prefixWarn  lipgloss.Style
	prefixHint  lipgloss.Style
	prefixDebug lipgloss.Style
}

func defaultStyles(r *lipgloss.Renderer) styles {
	return styles{
		prefixError: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		prefixWarn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		prefixHint:  r.NewStyle().Foreground(lipgloss.Color("6")),
		prefixDebug: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func plainStyles() styles {
	plain := lipgloss.NewStyle()
	return styles{prefixError: plain, prefixWarn: plain, prefixHint: plain, prefixDebug: plain}
}

// Logger writes "<level>: message" lines. It is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
	style styles
}

// New creates a new Logger.
func New(opts Options) *Logger {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	st := plainStyles()
	if opts.Color {
		st = defaultStyles(lipgloss.NewRenderer(opts.Out))
	}
	return &Logger{out: opts.Out, level: opts.Level, style: st}
}

// Discard returns a logger that prints nothing.
func Discard() *Logger {
	return New(Options{Out: io.Discard})
}

// SetLevel changes the level after construction.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Error always prints.
func (l *Logger) Error(format string, args ...any) {
	l.print(LevelError, l.style.prefixError, "error", format, args...)
}

// Hint always prints. It follows an Error with a suggested fix.
func (l *Logger) Hint(format string, args ...any) {
	l.print(LevelError, l.style.prefixHint, "hint", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.print(LevelWarn, l.style.prefixWarn, "warning", format, args...)
}

// Info prints without a prefix.
func (l *Logger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level < LevelInfo {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.print(LevelDebug, l.style.prefixDebug, "debug", format, args...)
}

func (l *Logger) print(level Level, style lipgloss.Style, prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level < level {
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", style.Render(prefix+":"), fmt.Sprintf(format, args...))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled decides whether output written to f should be styled.
// NO_COLOR in the environment always disables colour.
func ColorEnabled(f *os.File, configured, noColorFlag bool) bool {
	if noColorFlag || !configured {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(f)
}
