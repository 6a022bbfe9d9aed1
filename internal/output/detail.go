package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/ports/internal/port"
)

// DetailOptions controls detail rendering.
type DetailOptions struct {
	Color bool
}

// RenderDetail writes a labelled block for each entry, separated by a
// blank line. Fields ps could not read are shown as "-".
func RenderDetail(w io.Writer, entries []port.PortEntry, opts DetailOptions) error {
	label := lipgloss.NewStyle()
	if opts.Color {
		label = lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, f := range DetailFields(e) {
			b.WriteString(label.Render(fmt.Sprintf("%-10s", f.Label+":")))
			b.WriteString(" ")
			b.WriteString(f.Value)
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Field is one label/value line of the detail view.
type Field struct {
	Label string
	Value string
}

// DetailFields lists the detail lines for e. Shared by the CLI and TUI.
func DetailFields(e port.PortEntry) []Field {
	p := e.Process
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return SanitizeTerminal(s)
	}

	started := "-"
	if p.StartedAt != nil {
		started = p.StartedAt.Format("2006-01-02 15:04:05")
		if p.Elapsed != nil {
			started += fmt.Sprintf(" (%s ago)", FormatDuration(*p.Elapsed))
		}
	}

	return []Field{
		{"Port", fmt.Sprintf("%d/%s", e.Port, e.Protocol)},
		{"Process", fmt.Sprintf("%s (PID %d)", SanitizeTerminal(p.Name), p.PID)},
		{"Type", e.AppTypeName()},
		{"Command", orDash(p.Command)},
		{"User", orDash(p.User)},
		{"Started", started},
	}
}

// Uptime formats an optional elapsed duration, "-" when unknown.
func Uptime(elapsed *time.Duration) string {
	if elapsed == nil {
		return "-"
	}
	return FormatDuration(*elapsed)
}
