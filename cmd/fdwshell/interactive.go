package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
	"github.com/wippyai/pg-runtime/fdw"
	"github.com/wippyai/pg-runtime/hosttest"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2D6A4F")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2D6A4F"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type shellModel struct {
	engine  *hosttest.Engine
	rel     pgruntime.RelID
	routine *fdw.Routine

	rows     [][]string
	attrs    []pgruntime.Attr
	selected int
	inputs   []textinput.Model
	focusIdx int
	status   string
	err      error
	state    shellState
}

type shellState int

const (
	stateBrowse shellState = iota
	stateInsert
)

type scannedMsg struct {
	err  error
	rows [][]string
}

type mutatedMsg struct {
	err    error
	status string
}

func runInteractive(engine *hosttest.Engine, rel pgruntime.RelID, routine *fdw.Routine) error {
	m := &shellModel{
		engine:  engine,
		rel:     rel,
		routine: routine,
		attrs:   engine.RelationAttrs(rel),
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *shellModel) Init() tea.Cmd {
	return m.scan
}

func (m *shellModel) scan() tea.Msg {
	rows, err := scanRows(m.engine, m.rel, m.routine)
	return scannedMsg{rows: rows, err: err}
}

// scanRows drives one complete scan and renders each column to text. The
// statement region is reset afterwards, the way the host reclaims per-
// statement allocations.
func scanRows(engine *hosttest.Engine, rel pgruntime.RelID, routine *fdw.Routine) ([][]string, error) {
	defer engine.RegionReset(engine.WellKnownRegion(pgruntime.StatementRegion), true)

	tuples, err := engine.Scan(routine, rel)
	if err != nil {
		return nil, err
	}
	attrs := engine.RelationAttrs(rel)
	rows := make([][]string, 0, len(tuples))
	for _, t := range tuples {
		row := make([]string, len(attrs))
		for i, a := range attrs {
			row[i] = renderCell(engine, t[a.Name], a.Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func renderCell(engine *hosttest.Engine, v datum.Value, typ pgruntime.Oid) string {
	if v.IsNull() {
		return "∅"
	}
	switch typ {
	case pgruntime.OidInt2:
		n, err := datum.ToInt16(v)
		if err != nil {
			return "?"
		}
		return strconv.Itoa(int(n))
	case pgruntime.OidInt4:
		n, err := datum.ToInt32(v)
		if err != nil {
			return "?"
		}
		return strconv.Itoa(int(n))
	case pgruntime.OidInt8:
		n, err := datum.ToInt64(v)
		if err != nil {
			return "?"
		}
		return strconv.FormatInt(n, 10)
	case pgruntime.OidText:
		s, err := datum.ToString(engine, v)
		if err != nil {
			return "?"
		}
		return s
	default:
		return fmt.Sprintf("%#x", v.Word())
	}
}

// encodeCell converts TUI input back into a column value.
func encodeCell(engine *hosttest.Engine, s string, typ pgruntime.Oid) (datum.Value, error) {
	switch typ {
	case pgruntime.OidInt2:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return datum.Value{}, err
		}
		return datum.FromInt16(int16(n)), nil
	case pgruntime.OidInt4:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return datum.Value{}, err
		}
		return datum.FromInt32(int32(n)), nil
	case pgruntime.OidInt8:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return datum.Value{}, err
		}
		return datum.FromInt64(n), nil
	default:
		return datum.FromString(engine, s), nil
	}
}

func (m *shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateBrowse {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "r":
			if m.state == stateBrowse {
				return m, m.scan
			}

		case "i":
			if m.state == stateBrowse {
				m.prepareInputs()
				m.state = stateInsert
			}

		case "d":
			if m.state == stateBrowse && m.selected < len(m.rows) {
				return m, m.deleteSelected
			}

		case "tab":
			if m.state == stateInsert && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "enter":
			if m.state == stateInsert {
				m.state = stateBrowse
				return m, m.insert
			}

		case "esc":
			if m.state == stateInsert {
				m.state = stateBrowse
				m.inputs = nil
			}
		}

	case scannedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			if m.selected >= len(m.rows) && len(m.rows) > 0 {
				m.selected = len(m.rows) - 1
			}
		}

	case mutatedMsg:
		m.err = msg.err
		m.status = msg.status
		if msg.err == nil {
			return m, m.scan
		}
	}

	if m.state == stateInsert {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *shellModel) prepareInputs() {
	cols := m.insertableAttrs()
	m.inputs = make([]textinput.Model, len(cols))
	for i, a := range cols {
		ti := textinput.New()
		ti.Prompt = a.Name + ": "
		ti.Width = 32
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// insertableAttrs lists the columns the insert form edits. Generated
// columns such as timestamps are skipped.
func (m *shellModel) insertableAttrs() []pgruntime.Attr {
	var cols []pgruntime.Attr
	for _, a := range m.attrs {
		if a.Dropped || a.Name == "updated" {
			continue
		}
		cols = append(cols, a)
	}
	return cols
}

func (m *shellModel) insert() tea.Msg {
	cols := m.insertableAttrs()
	row := make(fdw.Tuple, len(cols))
	for i, a := range cols {
		v, err := encodeCell(m.engine, m.inputs[i].Value(), a.Type)
		if err != nil {
			return mutatedMsg{err: fmt.Errorf("column %s: %w", a.Name, err)}
		}
		row[a.Name] = v
	}
	m.inputs = nil

	h, err := m.engine.StartModify(m.routine, m.rel, columnNames(cols)...)
	if err != nil {
		return mutatedMsg{err: err}
	}
	defer h.Close()
	if err := h.Insert(row); err != nil {
		return mutatedMsg{err: err}
	}
	return mutatedMsg{status: "row inserted"}
}

func (m *shellModel) deleteSelected() tea.Msg {
	h, err := m.engine.StartModify(m.routine, m.rel)
	if err != nil {
		return mutatedMsg{err: err}
	}
	defer h.Close()

	keys := make(fdw.Tuple)
	for _, name := range h.Targets.Hidden() {
		for i, a := range m.attrs {
			if a.Name != name {
				continue
			}
			v, err := encodeCell(m.engine, m.rows[m.selected][i], a.Type)
			if err != nil {
				return mutatedMsg{err: err}
			}
			keys[name] = v
		}
	}
	if err := h.Delete(keys); err != nil {
		return mutatedMsg{err: err}
	}
	return mutatedMsg{status: "row deleted"}
}

func columnNames(attrs []pgruntime.Attr) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return names
}

func (m *shellModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FDW Shell"))
	b.WriteString(" ")
	b.WriteString(m.engine.RelationName(m.rel))
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		var header []string
		for _, a := range m.attrs {
			header = append(header, fmt.Sprintf("%-14s", a.Name))
		}
		b.WriteString(headerStyle.Render(strings.Join(header, "")))
		b.WriteString("\n")
		for i, row := range m.rows {
			var cells []string
			for _, c := range row {
				cells = append(cells, fmt.Sprintf("%-14s", c))
			}
			line := strings.Join(cells, "")
			if i == m.selected {
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("\n(%d rows)\n\n", len(m.rows)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else if m.status != "" {
			b.WriteString(resultStyle.Render(m.status))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ select • r rescan • i insert • d delete • q quit"))

	case stateInsert:
		b.WriteString("Insert row:\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter insert • esc back"))
	}

	return b.String()
}
