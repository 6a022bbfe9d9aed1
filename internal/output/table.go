// Package output renders port snapshots as a table, as JSON, or as a
// per-port detail view.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/ports/internal/port"
)

// DefaultCommandWidth is the widest COMMAND cell, in terminal columns.
const DefaultCommandWidth = 60

const rowFormat = "%5s  %6s  %-8s  %8s  %s"

// TableOptions controls table rendering.
type TableOptions struct {
	Color        bool
	CommandWidth int // display cells, DefaultCommandWidth when zero
}

// RenderTable writes one row per entry under a PORT/PID/TYPE/UPTIME/COMMAND
// header. Entries are written in the order given.
func RenderTable(w io.Writer, entries []port.PortEntry, opts TableOptions) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No listening ports found.")
		return err
	}

	width := opts.CommandWidth
	if width <= 0 {
		width = DefaultCommandWidth
	}
	st := newTableStyles(w, opts.Color)

	header := fmt.Sprintf(rowFormat, "PORT", "PID", "TYPE", "UPTIME", "COMMAND")
	if _, err := fmt.Fprintln(w, st.header.Render(header)); err != nil {
		return err
	}

	for _, e := range entries {
		typeCell := st.appType(e).Render(fmt.Sprintf("%-8s", e.AppTypeName()))

		row := fmt.Sprintf("%5d  %6d  %s  %8s  %s",
			e.Port, e.Process.PID, typeCell, Uptime(e.Process.Elapsed),
			TruncateCommand(e.Process.DisplayCommand(), width))
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// TruncateCommand sanitizes cmd and cuts it to width display cells,
// ending in "..." when cut.
func TruncateCommand(cmd string, width int) string {
	cmd = SanitizeTerminal(cmd)
	if runewidth.StringWidth(cmd) <= width {
		return cmd
	}
	return runewidth.Truncate(cmd, width, "...")
}

type tableStyles struct {
	header lipgloss.Style
	types  map[port.AppType]lipgloss.Style
	plain  lipgloss.Style
}

func newTableStyles(w io.Writer, color bool) tableStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return tableStyles{header: plain, plain: plain}
	}
	r := lipgloss.NewRenderer(w)
	return tableStyles{
		header: r.NewStyle().Bold(true).Underline(true),
		plain:  r.NewStyle(),
		types: map[port.AppType]lipgloss.Style{
			port.AppNodeJs: r.NewStyle().Foreground(lipgloss.Color("2")),
			port.AppPython: r.NewStyle().Foreground(lipgloss.Color("3")),
			port.AppDotNet: r.NewStyle().Foreground(lipgloss.Color("5")),
			port.AppJava:   r.NewStyle().Foreground(lipgloss.Color("1")),
			port.AppGo:     r.NewStyle().Foreground(lipgloss.Color("6")),
			port.AppRuby:   r.NewStyle().Foreground(lipgloss.Color("9")),
			port.AppPhp:    r.NewStyle().Foreground(lipgloss.Color("4")),
			port.AppRust:   r.NewStyle().Foreground(lipgloss.Color("208")),
			port.AppNginx:  r.NewStyle().Foreground(lipgloss.Color("10")),
			port.AppApache: r.NewStyle().Foreground(lipgloss.Color("13")),
		},
	}
}

func (s tableStyles) appType(e port.PortEntry) lipgloss.Style {
	if e.AppType == nil {
		return s.plain
	}
	if st, ok := s.types[*e.AppType]; ok {
		return st
	}
	return s.plain
}
