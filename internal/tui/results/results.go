package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sqlynx/sqlynx/internal/result"
	"github.com/sqlynx/sqlynx/internal/tui/theme"
)

// Model is the query results component. It renders a normalized result:
// tabular data, a prominent single value, or the execution error carried in
// the result's metadata.
type Model struct {
	res       *result.QueryResult
	lastQuery string // the SQL that produced res
	width     int
	height    int
	focused   bool
	loading   bool

	cursorX       int
	cursorY       int
	scrollY       int
	colWidths     []int
	statusMessage string
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
	m.statusMessage = ""
}

// SetResult sets the result to display, together with the SQL that
// produced it.
func (m *Model) SetResult(sql string, r *result.QueryResult) {
	m.res = r
	m.lastQuery = sql
	m.cursorX = 0
	m.cursorY = 0
	m.scrollY = 0
	m.loading = false
	m.statusMessage = ""
	m.calculateColumnWidths()
}

func (m *Model) calculateColumnWidths() {
	if m.res == nil || len(m.res.Columns) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.res.Columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range m.res.Columns {
		m.colWidths[i] = lipgloss.Width(col)
	}

	for _, row := range m.res.Rows {
		for i, cell := range row {
			w := lipgloss.Width(result.FormatCell(cell))
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}

	// Enforce minimum of 1 and cap at 40
	for i := range m.colWidths {
		if m.colWidths[i] < 1 {
			m.colWidths[i] = 1
		}
		if m.colWidths[i] > 40 {
			m.colWidths[i] = 40
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursorY > 0 {
				m.cursorY--
			}
		case "down", "j":
			if m.res != nil && m.cursorY < len(m.res.Rows)-1 {
				m.cursorY++
			}
		case "left", "h":
			if m.cursorX > 0 {
				m.cursorX--
			}
		case "right", "l":
			if m.res != nil && m.cursorX < len(m.res.Columns)-1 {
				m.cursorX++
			}
		case "pgup":
			m.cursorY -= m.height / 2
			if m.cursorY < 0 {
				m.cursorY = 0
			}
		case "pgdown":
			if m.res != nil {
				m.cursorY += m.height / 2
				if m.cursorY > len(m.res.Rows)-1 {
					m.cursorY = len(m.res.Rows) - 1
				}
				if m.cursorY < 0 {
					m.cursorY = 0
				}
			}
		case "y":
			m.doCopyCell()
		case "Y":
			m.doCopyRowText()
		case "J":
			m.doCopyRowJSON()
		case "C":
			m.doCopyRowCSV()
		case "f":
			return m, m.doFilterByValue()
		case "e":
			return m, m.exportCSVCmd()
		case "E":
			return m, m.exportJSONCmd()
		}
		m.followCursor()
	}

	return m, nil
}

// followCursor keeps the row under the cursor inside the visible window.
func (m *Model) followCursor() {
	visible := m.visibleRows()
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+visible {
		m.scrollY = m.cursorY - visible + 1
	}
	if m.scrollY < 0 {
		m.scrollY = 0
	}
}

func (m Model) visibleRows() int {
	v := m.height - 4 // title, header, separator, padding
	if v < 1 {
		v = 1
	}
	return v
}

// View renders the results pane.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	if m.loading {
		return titleStyle.Render("Results") + "\n" + theme.StyleMuted.Render("  Working...")
	}

	if m.res == nil {
		return titleStyle.Render("Results") + "\n" +
			theme.StyleMuted.Render("  Ask a question or run SQL to see results")
	}

	if m.res.Failed() {
		return titleStyle.Render("Results") + "\n" +
			theme.StyleError.Render("  Error: "+m.res.Metadata.Error) + "\n" +
			theme.StyleMuted.Render("  Edit the SQL pane and Ctrl+E to retry")
	}

	// Header with stats
	stats := fmt.Sprintf("%d row(s) | %s",
		len(m.res.Rows),
		m.res.Duration.Round(1000).String(),
	)
	if m.res.Metadata.IsVisualizable {
		stats += " | chartable"
	}
	header := titleStyle.Render("Results") + "  " +
		theme.StyleMuted.Render(stats)
	if m.statusMessage != "" {
		header += "  " + theme.StyleSuccess.Render(m.statusMessage)
	}

	if len(m.res.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Statement executed successfully")
	}

	// A single scalar answer gets rendered big, not as a 1x1 grid.
	if m.res.Metadata.IsSingleValue {
		return header + "\n" + m.renderSingleValue()
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	// Render table header
	b.WriteString(m.renderRow(m.res.Columns, -1))
	b.WriteString("\n")

	// Separator
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	// Visible rows
	visible := m.visibleRows()
	for i := m.scrollY; i < len(m.res.Rows) && i < m.scrollY+visible; i++ {
		cells := make([]string, len(m.res.Rows[i]))
		for j, cell := range m.res.Rows[i] {
			cells[j] = result.FormatCell(cell)
		}
		b.WriteString(m.renderRow(cells, i))
		if i < m.scrollY+visible-1 && i < len(m.res.Rows)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderSingleValue() string {
	label := m.res.Columns[0]
	value := result.FormatCell(m.res.Rows[0][0])

	valueStyle := lipgloss.NewStyle().
		Foreground(theme.ColorHighlight).
		Bold(true).
		Padding(1, 2)

	return theme.StyleMuted.Render("  "+label) + "\n" + valueStyle.Render(value)
}

// renderRow renders one row of cells. rowIdx is -1 for the header row.
func (m Model) renderRow(cells []string, rowIdx int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}
		if width < 1 {
			width = 1
		}

		display := cell
		displayWidth := lipgloss.Width(display)

		// Truncate if display is wider than column
		if displayWidth > width {
			runes := []rune(display)
			if width > 1 && len(runes) > 0 {
				trimmed := runes
				for lipgloss.Width(string(trimmed)) >= width && len(trimmed) > 0 {
					trimmed = trimmed[:len(trimmed)-1]
				}
				display = string(trimmed) + "…"
			} else {
				display = "…"
			}
			displayWidth = lipgloss.Width(display)
		}

		// Pad to column width; guard against negative (never panic)
		pad := width - displayWidth
		if pad > 0 {
			display += strings.Repeat(" ", pad)
		}

		switch {
		case rowIdx < 0:
			parts[i] = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.ColorPrimary).
				Render(display)
		case m.focused && rowIdx == m.cursorY && i == m.cursorX:
			parts[i] = lipgloss.NewStyle().
				Foreground(theme.ColorHighlight).
				Bold(true).
				Render(display)
		default:
			parts[i] = display
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	parts := make([]string, len(m.colWidths))
	for i, w := range m.colWidths {
		if w < 1 {
			w = 1
		}
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
