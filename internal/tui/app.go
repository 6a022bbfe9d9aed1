package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/ports/internal/output"
	"github.com/lu-zhengda/ports/internal/port"
	"github.com/lu-zhengda/ports/internal/snapshot"
)

// viewState tracks which screen the TUI is currently showing.
type viewState int

const (
	viewTable viewState = iota
	viewDetail
	viewSearch
)

// sortField defines what column to sort by.
type sortField int

const (
	sortByPort sortField = iota
	sortByPID
	sortByType
	sortFieldCount
)

func (s sortField) String() string {
	switch s {
	case sortByPID:
		return "pid"
	case sortByType:
		return "type"
	default:
		return "port"
	}
}

// Loader takes the one snapshot the viewer shows.
type Loader func(ctx context.Context) (*snapshot.Snapshot, error)

type snapshotMsg struct {
	snap *snapshot.Snapshot
	err  error
}

// Model is the Bubbletea model for the interactive port viewer. It shows a
// single snapshot; there is no background refresh.
type Model struct {
	load         Loader
	version      string
	commandWidth int

	entries  []port.PortEntry
	filtered []int // indices into entries for currently displayed items
	warnings []string
	err      error

	cursor       int
	scrollOffset int
	sortBy       sortField
	searchQuery  string

	loading bool
	spinner spinner.Model

	width  int
	height int

	currentView viewState
}

// New creates a new TUI model.
func New(load Loader, version string, commandWidth int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)

	if commandWidth <= 0 {
		commandWidth = output.DefaultCommandWidth
	}

	return Model{
		load:         load,
		version:      version,
		commandWidth: commandWidth,
		loading:      true,
		spinner:      sp,
		currentView:  viewTable,
	}
}

// Init starts the spinner and takes the snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.doLoad())
}

func (m Model) doLoad() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		snap, err := load(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

// Err returns the snapshot error, if any, after the program exits.
func (m Model) Err() error {
	return m.err
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.entries = msg.snap.Entries
		m.warnings = msg.snap.Warnings
		m.sortEntries()
		m.rebuildFiltered()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.currentView {
		case viewDetail:
			return m.updateDetail(msg)
		case viewSearch:
			return m.updateSearch(msg)
		default:
			return m.updateTable(msg)
		}
	}

	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Down):
		if len(m.filtered) > 0 && m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
	case key.Matches(msg, keys.Detail):
		if m.selectedEntry() != nil {
			m.currentView = viewDetail
		}
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortFieldCount
		m.sortEntries()
		m.rebuildFiltered()
	case key.Matches(msg, keys.Search):
		m.currentView = viewSearch
		m.searchQuery = ""
	case key.Matches(msg, keys.Back):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.rebuildFiltered()
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.currentView = viewTable
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.currentView = viewTable
		m.rebuildFiltered()
	case tea.KeyEsc:
		m.currentView = viewTable
		m.searchQuery = ""
		m.rebuildFiltered()
	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			r := []rune(m.searchQuery)
			m.searchQuery = string(r[:len(r)-1])
			m.rebuildFiltered()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
		m.rebuildFiltered()
	}
	return m, nil
}

func (m *Model) selectedEntry() *port.PortEntry {
	if len(m.filtered) == 0 || m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	idx := m.filtered[m.cursor]
	if idx >= len(m.entries) {
		return nil
	}
	entry := m.entries[idx]
	return &entry
}

func (m *Model) sortEntries() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		switch m.sortBy {
		case sortByPID:
			if a.Process.PID != b.Process.PID {
				return a.Process.PID < b.Process.PID
			}
		case sortByType:
			if an, bn := a.AppTypeName(), b.AppTypeName(); an != bn {
				return an < bn
			}
		}
		return a.Port < b.Port
	})
}

func (m *Model) rebuildFiltered() {
	m.filtered = m.filtered[:0]
	query := strings.ToLower(m.searchQuery)
	for i, e := range m.entries {
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		m.filtered = append(m.filtered, i)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.adjustScroll()
}

func matchesQuery(e port.PortEntry, query string) bool {
	return strings.Contains(strings.ToLower(e.Process.Name), query) ||
		strings.Contains(strings.ToLower(e.Process.User), query) ||
		strings.Contains(strings.ToLower(e.Process.Command), query) ||
		strings.Contains(strings.ToLower(e.AppTypeName()), query) ||
		strings.Contains(strconv.Itoa(int(e.Port)), query) ||
		strings.Contains(strconv.Itoa(e.Process.PID), query)
}

func (m *Model) ensureCursorVisible() {
	visible := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

func (m *Model) adjustScroll() {
	m.ensureCursorVisible()
	maxOffset := max(0, len(m.filtered)-m.visibleRows())
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m Model) visibleRows() int {
	// Reserve lines for: title (1), column headers (1), scroll indicator (1),
	// filter line (2), help (2) = 7.
	const reserved = 7
	return max(1, m.height-reserved)
}

// View renders the TUI.
func (m Model) View() string {
	switch m.currentView {
	case viewDetail:
		return m.viewDetail()
	case viewSearch:
		return m.viewSearch()
	default:
		return m.viewTable()
	}
}

func (m Model) viewTable() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("ports %s", m.version))
	stats := dimStyle.Render(fmt.Sprintf("Listening: %d  Sort: %s", len(m.entries), m.sortBy))
	b.WriteString(title + "  " + stats)
	if len(m.warnings) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  [%d warnings]", len(m.warnings))))
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString("\n" + m.spinner.View() + " Scanning ports...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  error: "+m.err.Error()) + "\n")
		b.WriteString(dimStyle.Render("  hint: "+port.Hint(m.err)) + "\n")
		b.WriteString(helpStyle.Render(helpLine(keys.Quit)) + "\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"  %5s  %6s  %-8s  %-10s  %8s  %s",
		"PORT", "PID", "TYPE", "USER", "UPTIME", "COMMAND",
	)) + "\n")

	if len(m.filtered) == 0 {
		if m.searchQuery != "" {
			b.WriteString("\n  No results matching: " + output.SanitizeTerminal(m.searchQuery) + "\n")
		} else {
			b.WriteString("\n  No listening ports found.\n")
		}
	} else {
		end := min(m.scrollOffset+m.visibleRows(), len(m.filtered))
		for i := m.scrollOffset; i < end; i++ {
			e := m.entries[m.filtered[i]]

			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}

			line := fmt.Sprintf("%5d  %6d  %-8s  %-10s  %8s  %s",
				e.Port, e.Process.PID, e.AppTypeName(),
				output.TruncateCommand(orDash(e.Process.User), 10),
				output.Uptime(e.Process.Elapsed),
				output.TruncateCommand(e.Process.DisplayCommand(), m.commandWidth),
			)
			b.WriteString(cursor + processStyle(e.Process.User).Render(line) + "\n")
		}

		if len(m.filtered) > m.visibleRows() {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]",
				m.scrollOffset+1, end, len(m.filtered))) + "\n")
		}
	}

	if m.searchQuery != "" {
		b.WriteString("\n" + dimStyle.Render("  filter: "+output.SanitizeTerminal(m.searchQuery)))
	}

	b.WriteString(helpStyle.Render(helpLine(keys.Down, keys.Up, keys.Detail, keys.Sort, keys.Search, keys.Quit)) + "\n")
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ports -- Port Info") + "\n\n")

	e := m.selectedEntry()
	if e == nil {
		b.WriteString("  No port selected.\n")
	} else {
		for _, f := range output.DetailFields(*e) {
			b.WriteString(labelStyle.Render(f.Label+":") + valueStyle.Render(f.Value) + "\n")
		}
	}

	b.WriteString(helpStyle.Render(helpLine(keys.Back, keys.Quit)) + "\n")
	return b.String()
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ports -- Search") + "\n\n")
	b.WriteString("  Type to filter: " + output.SanitizeTerminal(m.searchQuery) + "_\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d match", len(m.filtered), len(m.entries))) + "\n")
	b.WriteString(helpStyle.Render(helpLine(keys.Apply, keys.Back)) + "\n")

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
