package list

import (
	"bytes"
	"io"
	"time"

	"github.com/muesli/termenv"
)

// ProgressiveRenderer paints the skeleton immediately and then repaints
// individual rows in place as their cells settle. Every repaint is
// assembled in a buffer and written in a single Write call, so a row is
// never visible half-updated.
type ProgressiveRenderer struct {
	w         io.Writer
	profile   termenv.Profile
	termWidth int
	cols      []Column

	painted map[columnKey]int
	rows    int
	color   bool
	active  bool
}

// NewProgressiveRenderer builds a renderer for an interactive terminal.
// termWidth caps line length; pass 0 to disable truncation.
func NewProgressiveRenderer(w io.Writer, cols []Column, termWidth int) *ProgressiveRenderer {
	profile := termenv.ColorProfile()
	return &ProgressiveRenderer{
		w:         w,
		profile:   profile,
		termWidth: termWidth,
		cols:      cols,
		color:     profile != termenv.Ascii,
	}
}

// totalLines is header + rows + footer.
func (p *ProgressiveRenderer) totalLines() int { return p.rows + 2 }

func (p *ProgressiveRenderer) flush(buf *bytes.Buffer) error {
	_, err := p.w.Write(buf.Bytes())
	return err
}

func (p *ProgressiveRenderer) output(buf *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(buf, termenv.WithProfile(p.profile))
}

func (p *ProgressiveRenderer) writeLine(out *termenv.Output, line string) {
	out.ClearLine()
	out.WriteString(fitLine(line, p.termWidth))
	out.WriteString("\n")
}

// Skeleton paints the full table with placeholders and the progress
// footer, leaving the cursor below the footer.
func (p *ProgressiveRenderer) Skeleton(m *Model) error {
	now := time.Now()
	widths := Layout(m, p.cols, now)
	p.painted = widths
	p.rows = len(m.Rows)
	p.active = true

	var buf bytes.Buffer
	out := p.output(&buf)
	out.HideCursor()
	p.writeLine(out, renderHeader(p.cols, widths, p.color))
	for _, r := range m.Rows {
		p.writeLine(out, renderRow(r, p.cols, widths, now, p.color))
	}
	p.writeLine(out, renderFooter(m, p.color))
	return p.flush(&buf)
}

// RowChanged repaints the given row and the footer. When a column grew
// wider than the painted table, every line is repainted so the columns
// stay aligned.
func (p *ProgressiveRenderer) RowChanged(m *Model, row int) error {
	if !p.active || row < 0 || row >= p.rows {
		return nil
	}
	now := time.Now()
	widths := Layout(m, p.cols, now)
	if p.grew(widths) {
		p.painted = widths
		return p.repaintAll(m, widths, now)
	}

	var buf bytes.Buffer
	out := p.output(&buf)
	up := p.rows - row + 1
	out.CursorUp(up)
	out.ClearLine()
	out.WriteString(fitLine(renderRow(m.Rows[row], p.cols, widths, now, p.color), p.termWidth))
	out.WriteString("\r")
	out.CursorDown(up - 1)
	out.ClearLine()
	out.WriteString(fitLine(renderFooter(m, p.color), p.termWidth))
	out.WriteString("\r")
	out.CursorDown(1)
	return p.flush(&buf)
}

func (p *ProgressiveRenderer) grew(widths map[columnKey]int) bool {
	for key, w := range widths {
		if w > p.painted[key] {
			return true
		}
	}
	return false
}

func (p *ProgressiveRenderer) repaintAll(m *Model, widths map[columnKey]int, now time.Time) error {
	var buf bytes.Buffer
	out := p.output(&buf)
	out.CursorUp(p.totalLines())
	p.writeLine(out, renderHeader(p.cols, widths, p.color))
	for _, r := range m.Rows {
		p.writeLine(out, renderRow(r, p.cols, widths, now, p.color))
	}
	p.writeLine(out, renderFooter(m, p.color))
	return p.flush(&buf)
}

// Finish removes the progress footer and restores the cursor. The table
// itself stays on screen as painted.
func (p *ProgressiveRenderer) Finish(m *Model) error {
	if !p.active {
		return nil
	}
	p.active = false
	var buf bytes.Buffer
	out := p.output(&buf)
	out.CursorUp(1)
	out.ClearLine()
	out.WriteString("\r")
	out.ShowCursor()
	return p.flush(&buf)
}
