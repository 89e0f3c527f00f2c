package list

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Renderer is the one component allowed to write the table to the
// output stream. Two implementations exist: the progressive TTY
// renderer repaints rows in place as results arrive, the static
// renderer stays silent until settlement and emits everything once.
type Renderer interface {
	// Skeleton paints the table with placeholders, before any task runs.
	Skeleton(m *Model) error
	// RowChanged repaints after the aggregator updated one row.
	RowChanged(m *Model, row int) error
	// Finish completes output once all tasks settled (or the deadline
	// passed) and releases the terminal.
	Finish(m *Model) error
}

// colSpacing separates columns, matching the two-space padding of the
// static table.
const colSpacing = "  "

var (
	headerStyle      = lipgloss.NewStyle().Bold(true)
	currentStyle     = lipgloss.NewStyle().Bold(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true)
	degradedStyle    = lipgloss.NewStyle().Faint(true)
	dimStyle         = lipgloss.NewStyle().Faint(true)
	footerStyle      = lipgloss.NewStyle().Faint(true)
)

// renderHeader formats the header line.
func renderHeader(cols []Column, widths map[columnKey]int, color bool) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		cell := pad(col.Title, widths[col.Key])
		if color {
			cell = padStyled(headerStyle.Render(col.Title), col.Title, widths[col.Key])
		}
		parts[i] = cell
	}
	return strings.TrimRight(strings.Join(parts, colSpacing), " ")
}

// renderRow formats one row. Widths are measured on the plain text, so
// styling never shifts alignment.
func renderRow(r *Row, cols []Column, widths map[columnKey]int, now time.Time, color bool) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		text, class := CellText(r, col, now)
		if text == "" && class == ClassPlaceholder && !col.Numeric {
			text = Placeholder
		}
		cell := pad(text, widths[col.Key])
		if color {
			cell = padStyled(styleCell(r, col, text, class), text, widths[col.Key])
		}
		parts[i] = cell
	}
	return strings.TrimRight(strings.Join(parts, colSpacing), " ")
}

func styleCell(r *Row, col Column, text string, class CellClass) string {
	switch {
	case class == ClassPlaceholder:
		return placeholderStyle.Render(text)
	case class == ClassDegradedCell:
		return degradedStyle.Render(text)
	case class == ClassDim:
		return dimStyle.Render(text)
	case col.Key == colBranch && r.Current:
		return currentStyle.Render(text)
	}
	return text
}

// pad right-pads text to the column width, display-width aware.
func pad(text string, width int) string {
	gap := width - runewidth.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}

// padStyled pads a styled cell using the plain text's display width, so
// escape sequences don't count against the column.
func padStyled(styled, plain string, width int) string {
	gap := width - runewidth.StringWidth(plain)
	if gap <= 0 {
		return styled
	}
	return styled + strings.Repeat(" ", gap)
}

// renderFooter formats the live progress line shown under the table
// while tasks are still settling.
func renderFooter(m *Model, color bool) string {
	done, total := m.Progress()
	text := fmt.Sprintf("(%d/%d loaded)", done, total)
	if color {
		return footerStyle.Render(text)
	}
	return text
}

// fitLine truncates a rendered line to the terminal width, ANSI-aware,
// so a long path or subject never wraps and breaks in-place repaints.
func fitLine(line string, termWidth int) string {
	if termWidth <= 0 {
		return line
	}
	return truncate.StringWithTail(line, uint(termWidth), "…")
}
