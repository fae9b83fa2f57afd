package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mro/pkg/hierarchy"
	mroio "github.com/matzehuels/mro/pkg/io"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// ClassListModel - Interactive hierarchy browser
// =============================================================================

// classRow is one class with its bases and outcome.
type classRow struct {
	Bases  []string
	Result mroio.ClassResult
}

// ClassListModel is the bubbletea model for browsing linearizations.
type ClassListModel struct {
	Rows   []classRow
	Cursor int
	Height int
	Offset int
	// FailedOnly hides classes with a consistent order.
	FailedOnly bool
}

// NewClassListModel pairs each result with the bases declared in g.
func NewClassListModel(g *hierarchy.Graph, rs *mroio.ResultSet) ClassListModel {
	rows := make([]classRow, 0, len(rs.Classes))
	for _, r := range rs.Classes {
		bases, _ := g.BasesOf(hierarchy.ClassID(r.Class))
		rows = append(rows, classRow{Bases: idStrings(bases), Result: r})
	}
	return ClassListModel{Rows: rows, Height: 12}
}

func (m ClassListModel) Init() tea.Cmd {
	return nil
}

func (m ClassListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		visible := m.visible()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "f":
			m.FailedOnly = !m.FailedOnly
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

// visible returns the rows shown under the current filter.
func (m ClassListModel) visible() []classRow {
	if !m.FailedOnly {
		return m.Rows
	}
	var out []classRow
	for _, r := range m.Rows {
		if r.Result.Error != nil {
			out = append(out, r)
		}
	}
	return out
}

// Selected returns the row under the cursor.
func (m ClassListModel) Selected() (classRow, bool) {
	rows := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return classRow{}, false
	}
	return rows[m.Cursor], true
}

func (m ClassListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Class Hierarchy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  f failed only  q quit"))
	b.WriteString("\n\n")

	rows := m.visible()
	end := min(m.Offset+m.Height, len(rows))

	cells := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := iconSuccess
		if r.Result.Error != nil {
			status = iconError
		}
		bases := strings.Join(r.Bases, ", ")
		if bases == "" {
			bases = "—"
		}
		cells = append(cells, []string{cursor, status, r.Result.Class, bases})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Class", "Bases").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			failed := rows[idx].Result.Error != nil
			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorDim)
			}
			switch {
			case idx == m.Cursor && failed:
				return base.Foreground(colorRed).Bold(true)
			case idx == m.Cursor:
				return base.Foreground(colorCyan).Bold(true)
			case failed && col <= 2:
				return base.Foreground(colorRed)
			case col == 1:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(rows) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(rows))))
	} else {
		b.WriteString(listDimStyle.Render("  no classes"))
	}
	b.WriteString("\n")

	if sel, ok := m.Selected(); ok {
		b.WriteString(detailBoxStyle.Render(detailView(sel)))
		b.WriteString("\n")
	}
	return b.String()
}

// detailView renders the MRO or failure of one class.
func detailView(r classRow) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(r.Result.Class))
	b.WriteString("\n")
	if rep := r.Result.Error; rep != nil {
		b.WriteString(StyleError.Render(strings.TrimRight(rep.Text(), "\n")))
		return b.String()
	}
	b.WriteString(formatOrder(r.Result.MRO))
	return b.String()
}
