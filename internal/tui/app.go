package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sqlynx/sqlynx/internal/app"
	"github.com/sqlynx/sqlynx/internal/config"
	"github.com/sqlynx/sqlynx/internal/result"
	"github.com/sqlynx/sqlynx/internal/tui/editor"
	"github.com/sqlynx/sqlynx/internal/tui/history"
	"github.com/sqlynx/sqlynx/internal/tui/results"
	"github.com/sqlynx/sqlynx/internal/tui/statusbar"
	"github.com/sqlynx/sqlynx/internal/tui/theme"
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneQuestion Pane = iota
	PaneEditor
	PaneResults
	PaneHistory
)

func (p Pane) String() string {
	switch p {
	case PaneQuestion:
		return "question"
	case PaneEditor:
		return "sql"
	case PaneResults:
		return "results"
	case PaneHistory:
		return "history"
	default:
		return "unknown"
	}
}

// AppMode tracks the current UI state.
type AppMode int

const (
	ModeBoot AppMode = iota // building or loading the schema index
	ModeMain                // main TUI
)

// BootFunc prepares the schema index and returns the number of indexed
// tables. It runs once, asynchronously, before the main screen appears.
type BootFunc func(ctx context.Context) (int, error)

// Custom messages for async operations.
type (
	bootDoneMsg struct {
		tables int
		err    error
	}
	answerMsg struct {
		answer *app.Answer
		err    error
	}
	queryExecutedMsg struct {
		sql string
		res *result.QueryResult
	}
)

// Model is the top-level bubbletea model orchestrating all components.
type Model struct {
	service   *app.Service
	cfg       *config.Config
	boot      BootFunc
	question  textinput.Model
	editor    editor.Model
	history   history.Model
	results   results.Model
	statusbar statusbar.Model

	activePane Pane
	mode       AppMode
	width      int
	height     int
	bootErr    error
	showHelp   bool
	thinking   bool
}

// NewModel creates the top-level model.
func NewModel(service *app.Service, cfg *config.Config, boot BootFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your data..."
	ti.Focus()
	ti.CharLimit = 500

	m := Model{
		service:    service,
		cfg:        cfg,
		boot:       boot,
		question:   ti,
		editor:     editor.New(),
		history:    history.New(),
		results:    results.New(),
		statusbar:  statusbar.New(),
		activePane: PaneQuestion,
		mode:       ModeBoot,
	}
	m.statusbar.SetModel(cfg.LLM.Model)

	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bootCmd())
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		// Global keys
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Help toggle only from panes that don't capture typing
		if msg.String() == "?" && m.mode == ModeMain &&
			(m.activePane == PaneHistory || m.activePane == PaneResults) {
			m.showHelp = !m.showHelp
			return m, nil
		}

		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if m.mode == ModeMain {
			return m.updateMain(msg)
		}
		return m, nil

	case bootDoneMsg:
		if msg.err != nil {
			m.bootErr = msg.err
			return m, nil
		}
		m.mode = ModeMain
		m.statusbar.SetConnected(true, m.connLabel())
		m.statusbar.SetMessage(fmt.Sprintf("Indexed %d tables", msg.tables))
		m.editor.SetTableNames(m.service.TableNames())
		m.setFocus(PaneQuestion)
		m.layout()
		return m, nil

	case answerMsg:
		m.thinking = false
		m.results.SetLoading(false)
		if msg.err != nil {
			m.statusbar.SetMessage(msg.err.Error())
			return m, nil
		}
		ans := msg.answer
		m.editor.SetQuery(ans.SQL)
		m.results.SetResult(ans.SQL, ans.Result)
		m.history.SetAnswers(m.service.History())
		if ans.Refined {
			m.statusbar.SetMessage("Regenerated after a database error")
		} else {
			m.statusbar.SetMessage("")
		}
		return m, nil

	case queryExecutedMsg:
		m.results.SetResult(msg.sql, msg.res)
		m.statusbar.SetMessage("")
		return m, nil

	case editor.ExecuteQueryMsg:
		m.results.SetLoading(true)
		m.statusbar.SetMessage("Running query...")
		return m, m.runSQLCmd(msg.Query)

	case results.SetEditorQueryMsg:
		m.editor.SetQuery(msg.Query)
		m.setFocus(PaneEditor)
		return m, nil

	case results.StatusNotifyMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil

	case history.SelectedMsg:
		ans := msg.Answer
		m.question.SetValue(ans.Question)
		m.editor.SetQuery(ans.SQL)
		m.results.SetResult(ans.SQL, ans.Result)
		m.setFocus(PaneResults)
		return m, nil
	}

	// Pass through to active component
	if m.mode == ModeMain {
		return m.updateComponents(msg)
	}

	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.activePane == PaneHistory || m.activePane == PaneResults {
			return m, tea.Quit
		}
	case "tab":
		if m.activePane == PaneEditor && m.editor.CompletionActive() {
			return m.updateComponents(msg)
		}
		m.cyclePane()
		return m, nil
	case "shift+tab":
		m.cyclePaneBack()
		return m, nil
	case "enter":
		if m.activePane == PaneQuestion {
			question := strings.TrimSpace(m.question.Value())
			if question == "" || m.thinking {
				return m, nil
			}
			m.thinking = true
			m.results.SetLoading(true)
			m.statusbar.SetMessage("Thinking...")
			return m, m.askCmd(question)
		}
	}

	return m.updateComponents(msg)
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.activePane {
	case PaneQuestion:
		m.question, cmd = m.question.Update(msg)
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
	case PaneHistory:
		m.history, cmd = m.history.Update(msg)
	}

	return m, cmd
}

func (m *Model) cyclePane() {
	switch m.activePane {
	case PaneQuestion:
		m.setFocus(PaneEditor)
	case PaneEditor:
		m.setFocus(PaneResults)
	case PaneResults:
		m.setFocus(PaneHistory)
	case PaneHistory:
		m.setFocus(PaneQuestion)
	}
}

func (m *Model) cyclePaneBack() {
	switch m.activePane {
	case PaneQuestion:
		m.setFocus(PaneHistory)
	case PaneEditor:
		m.setFocus(PaneQuestion)
	case PaneResults:
		m.setFocus(PaneEditor)
	case PaneHistory:
		m.setFocus(PaneResults)
	}
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	if pane == PaneQuestion {
		m.question.Focus()
	} else {
		m.question.Blur()
	}
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.history.SetFocused(pane == PaneHistory)
	m.statusbar.SetActivePane(pane.String())
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	statusHeight := 1
	availHeight := m.height - statusHeight

	historyWidth := m.width / 4
	if historyWidth < 22 {
		historyWidth = 22
	}
	if historyWidth > 35 {
		historyWidth = 35
	}

	rightWidth := m.width - historyWidth - 1

	questionHeight := 3
	editorHeight := (availHeight - questionHeight) * 35 / 100
	if editorHeight < 5 {
		editorHeight = 5
	}
	resultsHeight := availHeight - questionHeight - editorHeight - 1

	m.question.Width = rightWidth - 6
	m.history.SetSize(historyWidth, availHeight)
	m.editor.SetSize(rightWidth, editorHeight)
	m.results.SetSize(rightWidth, resultsHeight)
	m.statusbar.SetWidth(m.width)
}

func (m Model) connLabel() string {
	return string(m.cfg.DB.Scheme) + "/" + m.service.DatabaseName()
}

// Async commands
//
// None of these attach a deadline: question answering waits on the model
// and the database for as long as they take, and Ctrl+C remains the way
// out of a query that will not finish.

func (m Model) bootCmd() tea.Cmd {
	boot := m.boot
	return func() tea.Msg {
		tables, err := boot(context.Background())
		return bootDoneMsg{tables: tables, err: err}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ans, err := service.Ask(context.Background(), question)
		return answerMsg{answer: ans, err: err}
	}
}

func (m Model) runSQLCmd(query string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		res := service.RunSQL(context.Background(), query)
		return queryExecutedMsg{sql: query, res: res}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	if m.mode == ModeBoot {
		return m.viewBoot()
	}
	return m.viewMain()
}

func (m Model) viewBoot() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(1, 0)
	subtitleStyle := lipgloss.NewStyle().Foreground(theme.ColorMuted)

	title := titleStyle.Render("sqlynx")
	subtitle := subtitleStyle.Render("Ask your database, in plain language.")

	status := theme.StyleMuted.Render("Indexing schema...")
	if m.bootErr != nil {
		status = theme.StyleError.Render("Error: "+m.bootErr.Error()) + "\n" +
			theme.StyleMuted.Render("Ctrl+C to quit")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		title,
		subtitle,
		"",
		status,
	)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (m Model) viewMain() string {
	historyWidth := m.width / 4
	if historyWidth < 22 {
		historyWidth = 22
	}
	if historyWidth > 35 {
		historyWidth = 35
	}

	rightWidth := m.width - historyWidth - 1

	statusHeight := 1
	availHeight := m.height - statusHeight - 2

	historyBorder := theme.StyleBorder
	if m.activePane == PaneHistory {
		historyBorder = theme.StyleActiveBorder
	}
	historyView := historyBorder.
		Width(historyWidth - 2).
		Height(availHeight).
		Render(m.history.View())

	questionHeight := 1
	editorHeight := (availHeight - questionHeight) * 35 / 100
	if editorHeight < 5 {
		editorHeight = 5
	}
	resultsHeight := availHeight - questionHeight - editorHeight - 6

	questionBorder := theme.StyleBorder
	if m.activePane == PaneQuestion {
		questionBorder = theme.StyleActiveBorder
	}
	questionView := questionBorder.
		Width(rightWidth - 2).
		Height(questionHeight).
		Render(m.question.View())

	editorBorder := theme.StyleBorder
	if m.activePane == PaneEditor {
		editorBorder = theme.StyleActiveBorder
	}
	editorView := editorBorder.
		Width(rightWidth - 2).
		Height(editorHeight).
		Render(m.editor.View())

	resultsBorder := theme.StyleBorder
	if m.activePane == PaneResults {
		resultsBorder = theme.StyleActiveBorder
	}
	resultsView := resultsBorder.
		Width(rightWidth - 2).
		Height(resultsHeight).
		Render(m.results.View())

	rightPane := lipgloss.JoinVertical(lipgloss.Left,
		questionView,
		editorView,
		resultsView,
	)

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top,
		historyView,
		rightPane,
	)

	statusView := m.statusbar.View()

	return lipgloss.JoinVertical(lipgloss.Left,
		mainArea,
		statusView,
	)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(theme.ColorHighlight).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	descStyle := lipgloss.NewStyle().
		Foreground(theme.ColorMuted)

	help := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("sqlynx - Keyboard Shortcuts"),
		"",
		sectionStyle.Render("Global"),
		keyStyle.Render("  Ctrl+C")+"        "+descStyle.Render("Quit application"),
		keyStyle.Render("  Tab")+"           "+descStyle.Render("Switch between panes"),
		keyStyle.Render("  Shift+Tab")+"     "+descStyle.Render("Switch panes (reverse)"),
		keyStyle.Render("  ?")+"             "+descStyle.Render("Toggle this help"),
		"",
		sectionStyle.Render("Question"),
		keyStyle.Render("  Enter")+"         "+descStyle.Render("Ask"),
		"",
		sectionStyle.Render("SQL"),
		keyStyle.Render("  Ctrl+E / F5")+"   "+descStyle.Render("Execute query"),
		keyStyle.Render("  Ctrl+K")+"        "+descStyle.Render("Clear editor"),
		keyStyle.Render("  Ctrl+L")+"        "+descStyle.Render("Format query (uppercase keywords)"),
		keyStyle.Render("  Tab")+"           "+descStyle.Render("Complete table name"),
		keyStyle.Render("  Esc")+"           "+descStyle.Render("Cancel completion"),
		"",
		sectionStyle.Render("Results"),
		keyStyle.Render("  ↑/k ↓/j ←/h →/l")+" "+descStyle.Render("Move cell cursor"),
		keyStyle.Render("  PgUp/PgDn")+"     "+descStyle.Render("Page up/down"),
		keyStyle.Render("  y / Y")+"         "+descStyle.Render("Copy cell / row"),
		keyStyle.Render("  J / C")+"         "+descStyle.Render("Copy row as JSON / CSV"),
		keyStyle.Render("  e / E")+"         "+descStyle.Render("Export CSV / JSON"),
		keyStyle.Render("  f")+"             "+descStyle.Render("Filter by selected value"),
		"",
		sectionStyle.Render("History"),
		keyStyle.Render("  ↑/k  ↓/j")+"     "+descStyle.Render("Navigate"),
		keyStyle.Render("  Enter")+"         "+descStyle.Render("Revisit answer"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		help,
	)
}
