package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sqlynx/sqlynx/internal/result"
)

func (m Model) getCellValue() string {
	if m.res == nil || m.cursorY < 0 || m.cursorY >= len(m.res.Rows) {
		return ""
	}
	row := m.res.Rows[m.cursorY]
	if m.cursorX < 0 || m.cursorX >= len(row) {
		return ""
	}
	return result.FormatCell(row[m.cursorX])
}

func (m Model) getColumnName() string {
	if m.res == nil || m.cursorX < 0 || m.cursorX >= len(m.res.Columns) {
		return ""
	}
	return m.res.Columns[m.cursorX]
}

// currentRow returns the cursor row formatted for display, or nil.
func (m Model) currentRow() []string {
	if m.res == nil || m.cursorY < 0 || m.cursorY >= len(m.res.Rows) {
		return nil
	}
	row := m.res.Rows[m.cursorY]
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = result.FormatCell(cell)
	}
	return out
}

// --- Copy ---

func (m *Model) doCopyCell() {
	val := m.getCellValue()
	if val == "" {
		m.statusMessage = "Nothing to copy"
		return
	}
	if err := clipboard.WriteAll(val); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied: " + truncateStatus(val, 40)
}

func (m *Model) doCopyRowJSON() {
	row := m.currentRow()
	if row == nil {
		m.statusMessage = "No row to copy"
		return
	}
	jsonStr := rowToJSON(m.res.Columns, row)
	if err := clipboard.WriteAll(jsonStr); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as JSON"
}

func (m *Model) doCopyRowCSV() {
	row := m.currentRow()
	if row == nil {
		m.statusMessage = "No row to copy"
		return
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.res.Columns)
	_ = w.Write(row)
	w.Flush()
	if err := clipboard.WriteAll(b.String()); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as CSV"
}

func (m *Model) doCopyRowText() {
	row := m.currentRow()
	if row == nil {
		m.statusMessage = "No row to copy"
		return
	}
	if err := clipboard.WriteAll(strings.Join(row, "\t")); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as text"
}

// --- Filter ---

func (m *Model) doFilterByValue() tea.Cmd {
	col := m.getColumnName()
	val := m.getCellValue()
	table := extractTableName(m.lastQuery)
	if col == "" || table == "" {
		m.statusMessage = "Cannot filter: no cell selected"
		return nil
	}

	var condition string
	if val == "NULL" {
		condition = col + " IS NULL"
	} else {
		escaped := strings.ReplaceAll(val, "'", "''")
		condition = fmt.Sprintf("%s = '%s'", col, escaped)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, condition)

	return func() tea.Msg {
		return SetEditorQueryMsg{Query: query}
	}
}

// --- Export ---

func (m Model) exportJSONCmd() tea.Cmd {
	res := m.res
	if res == nil || res.Failed() {
		return nil
	}
	return func() tea.Msg {
		ts := time.Now().Format("20060102_150405")
		filename := fmt.Sprintf("sqlynx_export_%s.json", ts)

		var b strings.Builder
		b.WriteString("[\n")
		for ri, row := range res.Rows {
			if ri > 0 {
				b.WriteString(",\n")
			}
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = result.FormatCell(cell)
			}
			b.WriteString("  ")
			b.WriteString(rowToJSON(res.Columns, cells))
		}
		b.WriteString("\n]")

		if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(res.Rows), filename)}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	res := m.res
	if res == nil || res.Failed() {
		return nil
	}
	return func() tea.Msg {
		ts := time.Now().Format("20060102_150405")
		filename := fmt.Sprintf("sqlynx_export_%s.csv", ts)

		f, err := os.Create(filename)
		if err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		defer f.Close()

		w := csv.NewWriter(f)
		_ = w.Write(res.Columns)
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = result.FormatCell(cell)
			}
			_ = w.Write(cells)
		}
		w.Flush()

		if err := w.Error(); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(res.Rows), filename)}
	}
}

// --- Helpers ---

func extractTableName(query string) string {
	if query == "" {
		return "<table>"
	}
	tokens := strings.Fields(query)
	upper := make([]string, len(tokens))
	for i, t := range tokens {
		upper[i] = strings.ToUpper(t)
	}
	for i, tok := range upper {
		if (tok == "FROM" || tok == "INTO" || tok == "UPDATE") && i+1 < len(tokens) {
			name := tokens[i+1]
			name = strings.TrimRight(name, ";,()")
			if name != "" {
				return name
			}
		}
	}
	return "<table>"
}

// rowToJSON preserves column order unlike map marshaling
func rowToJSON(columns []string, row []string) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.WriteString(string(key))
		b.WriteString(": ")
		if i < len(row) {
			if row[i] == "NULL" {
				b.WriteString("null")
			} else {
				val, _ := json.Marshal(row[i])
				b.WriteString(string(val))
			}
		} else {
			b.WriteString("null")
		}
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
