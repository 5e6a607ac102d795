package history

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sqlynx/sqlynx/internal/app"
	"github.com/sqlynx/sqlynx/internal/tui/theme"
)

// SelectedMsg is sent when the user picks a past answer to revisit.
type SelectedMsg struct {
	Answer *app.Answer
}

// Model is the session history component: every question asked so far,
// oldest first, like a transcript.
type Model struct {
	answers []*app.Answer
	cursor  int
	width   int
	height  int
	focused bool
}

// New creates a new history model.
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

// Focused returns whether the history pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetAnswers replaces the transcript and moves the cursor to the latest entry.
func (m *Model) SetAnswers(answers []*app.Answer) {
	m.answers = answers
	if len(answers) > 0 {
		m.cursor = len(answers) - 1
	} else {
		m.cursor = 0
	}
}

// Selected returns the answer under the cursor, if any.
func (m Model) Selected() (*app.Answer, bool) {
	if m.cursor < 0 || m.cursor >= len(m.answers) {
		return nil, false
	}
	return m.answers[m.cursor], true
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.answers)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			if len(m.answers) > 0 {
				m.cursor = len(m.answers) - 1
			}
		case "enter":
			if ans, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return SelectedMsg{Answer: ans}
				}
			}
		}
	}

	return m, nil
}

// View renders the history pane.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	title := titleStyle.Render("History")

	if len(m.answers) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No questions yet")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := m.height - 2 // title + padding
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	// Scroll offset to keep cursor visible
	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.answers) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString(m.renderEntry(m.answers[i], i == m.cursor))
		if i < scrollOffset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderEntry(ans *app.Answer, selected bool) string {
	var icon string
	switch {
	case ans.Result == nil:
		icon = theme.StyleMuted.Render("· ")
	case ans.Result.Failed():
		icon = theme.StyleError.Render("✗ ")
	case ans.Refined:
		icon = theme.StyleSuccess.Render("↻ ")
	default:
		icon = theme.StyleSuccess.Render("✓ ")
	}

	text := ans.Asked.Format("15:04") + " " + ans.Question
	line := icon + text

	// Truncate to width
	if m.width > 0 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(text)
		keep := m.width - 8
		if keep < 1 {
			keep = 1
		}
		if len(runes) > keep {
			line = icon + string(runes[:keep]) + ".."
		}
	}

	if selected {
		return lipgloss.NewStyle().
			Foreground(theme.ColorHighlight).
			Bold(true).
			Render(line)
	}

	return line
}
