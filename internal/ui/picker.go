package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/twig-dev/twig/internal/list"
)

var (
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	unselectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	matchStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// PickResult is the outcome of an interactive pick.
type PickResult struct {
	Row       list.RowSnapshot
	Selected  bool
	Cancelled bool
}

type pickerModel struct {
	rows      []list.RowSnapshot
	filtered  []scoredRow
	textInput textinput.Model
	cursor    int
	selected  *list.RowSnapshot
	cancelled bool
	maxHeight int
}

// scoredRow pairs a row with the character positions its label matched,
// for highlighting.
type scoredRow struct {
	row     list.RowSnapshot
	matches []int
}

// pickLabel is the text the fuzzy filter runs over and the picker shows.
func pickLabel(r list.RowSnapshot) string {
	if r.Path == "" {
		return r.Branch
	}
	folder := filepath.Base(r.Path)
	if folder == r.Branch {
		return r.Branch
	}
	return fmt.Sprintf("%s (%s)", r.Branch, folder)
}

// rowSource adapts rows to the fuzzy matcher.
type rowSource []list.RowSnapshot

func (s rowSource) String(i int) string { return pickLabel(s[i]) }
func (s rowSource) Len() int            { return len(s) }

func newPickerModel(rows []list.RowSnapshot) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40
	ti.PromptStyle = cursorStyle

	return pickerModel{
		rows:      rows,
		filtered:  allRows(rows),
		textInput: ti,
		maxHeight: 10,
	}
}

func allRows(rows []list.RowSnapshot) []scoredRow {
	out := make([]scoredRow, len(rows))
	for i, r := range rows {
		out[i] = scoredRow{row: r}
	}
	return out
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				row := m.filtered[m.cursor].row
				m.selected = &row
			}
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.filtered = filterRows(m.rows, m.textInput.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	return m, cmd
}

// filterRows ranks rows by fuzzy match quality. An empty query keeps
// the original listing order.
func filterRows(rows []list.RowSnapshot, query string) []scoredRow {
	if query == "" {
		return allRows(rows)
	}
	matches := fuzzy.FindFrom(query, rowSource(rows))
	out := make([]scoredRow, 0, len(matches))
	for _, match := range matches {
		out = append(out, scoredRow{
			row:     rows[match.Index],
			matches: match.MatchedIndexes,
		})
	}
	return out
}

func (m pickerModel) View() string {
	var sb strings.Builder

	sb.WriteString("Select worktree:\n")
	sb.WriteString(m.textInput.View())
	sb.WriteString("\n\n")

	if len(m.filtered) == 0 {
		sb.WriteString(dimStyle.Render("  No matches found"))
		sb.WriteString("\n")
	} else {
		start, end := visibleRange(m.cursor, len(m.filtered), m.maxHeight)
		for i := start; i < end; i++ {
			entry := m.filtered[i]
			line := highlightLabel(entry, i == m.cursor)
			if i == m.cursor {
				sb.WriteString(cursorStyle.Render("> "))
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if len(m.filtered) > m.maxHeight {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  %d/%d", m.cursor+1, len(m.filtered))))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑/↓ navigate • enter select • esc cancel"))
	return sb.String()
}

// visibleRange windows the list around the cursor.
func visibleRange(cursor, count, maxHeight int) (int, int) {
	if count <= maxHeight {
		return 0, count
	}
	start := cursor - maxHeight/2
	if start < 0 {
		start = 0
	}
	end := start + maxHeight
	if end > count {
		end = count
		start = max(0, end-maxHeight)
	}
	return start, end
}

// highlightLabel renders the entry label with matched characters
// emphasized.
func highlightLabel(entry scoredRow, current bool) string {
	label := pickLabel(entry.row)
	base := unselectedStyle
	if current {
		base = selectedStyle
	}
	if len(entry.matches) == 0 {
		return base.Render(label)
	}

	matched := make(map[int]bool, len(entry.matches))
	for _, idx := range entry.matches {
		matched[idx] = true
	}
	var sb strings.Builder
	for i, r := range label {
		if matched[i] {
			sb.WriteString(matchStyle.Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}
	return sb.String()
}

// Pick shows an interactive fuzzy picker over the rows and returns the
// chosen one. Rows keep their listing order until the user types.
func Pick(rows []list.RowSnapshot) (*PickResult, error) {
	if len(rows) == 0 {
		return &PickResult{Cancelled: true}, nil
	}

	p := tea.NewProgram(newPickerModel(rows))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(pickerModel)
	if m.cancelled || m.selected == nil {
		return &PickResult{Cancelled: true}, nil
	}
	return &PickResult{Row: *m.selected, Selected: true}, nil
}
