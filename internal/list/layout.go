package list

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/twig-dev/twig/internal/forge"
	"github.com/twig-dev/twig/internal/git"
)

// Placeholder is the low-visual-weight marker rendered in computed text
// columns before their task reports. Numeric columns render blank
// instead, because 0 is a real value and must stay distinguishable.
const Placeholder = "·"

// DegradedMarker replaces values that could not be computed.
const DegradedMarker = "?"

// columnKey identifies a table column.
type columnKey int

const (
	colBranch columnKey = iota
	colStatus
	colWorking
	colMain
	colDiff
	colUpstream
	colCI
	colURL
	colAge
	colMessage
	colPath
)

// Column describes one table column.
type Column struct {
	Key     columnKey
	Title   string
	Numeric bool // blank placeholder instead of the dot
}

// Columns returns the visible column set for the given options, in
// display order. CI only appears in full mode, URL only with a
// template configured.
func Columns(opts Options) []Column {
	cols := []Column{
		{Key: colBranch, Title: "Branch"},
		{Key: colStatus, Title: "Status"},
		{Key: colWorking, Title: "Working ±", Numeric: true},
		{Key: colMain, Title: "Main ↕", Numeric: true},
		{Key: colDiff, Title: "Main ±", Numeric: true},
		{Key: colUpstream, Title: "Remote ↕", Numeric: true},
	}
	if opts.Full {
		cols = append(cols, Column{Key: colCI, Title: "CI"})
	}
	if opts.URLTemplate != "" {
		cols = append(cols, Column{Key: colURL, Title: "URL"})
	}
	cols = append(cols,
		Column{Key: colAge, Title: "Age"},
		Column{Key: colMessage, Title: "Message"},
		Column{Key: colPath, Title: "Path"},
	)
	return cols
}

// CellClass says how a rendered cell should be styled.
type CellClass int

const (
	ClassValue CellClass = iota
	ClassPlaceholder
	ClassDegradedCell
	ClassDim
)

// CellText renders the plain (unstyled) text of one cell plus its
// styling class. Widths are measured on exactly this text, so the
// styled renderers never change alignment.
func CellText(r *Row, col Column, now time.Time) (string, CellClass) {
	switch col.Key {
	case colBranch:
		return branchText(r), ClassValue
	case colStatus:
		return statusText(r), statusClass(r)
	case colWorking:
		return diffCell(&r.Working, col)
	case colMain:
		return divergenceCell(&r.Main, r.Primary)
	case colDiff:
		return diffCell(&r.Diff, col)
	case colUpstream:
		return upstreamCell(&r.Upstream)
	case colCI:
		return ciCell(r)
	case colURL:
		return urlCell(r)
	case colAge:
		if r.Commit.Time.IsZero() {
			return "", ClassValue
		}
		return Age(now.Sub(r.Commit.Time)), ClassDim
	case colMessage:
		return r.Commit.Subject, ClassDim
	case colPath:
		if r.Path == "" {
			return "", ClassValue
		}
		return collapseHome(r.Path), ClassDim
	}
	return "", ClassValue
}

func branchText(r *Row) string {
	marker := "  "
	if r.Current {
		marker = "* "
	}
	return marker + r.Branch
}

func statusClass(r *Row) CellClass {
	switch {
	case r.Status.State() == CellPending && r.HasWorktree():
		return ClassPlaceholder
	case r.Status.State() == CellDegraded:
		return ClassDegradedCell
	}
	return ClassValue
}

// statusText builds the fixed-position symbol grid:
// staged + / modified ! / untracked ? / branch-op state ✖↻⋈⚠≡∅ /
// main divergence ^↑↓↕ / upstream divergence ⇡⇣⇅ / worktree state ⊠⌫⎇.
// Fixed positions keep progressive repaints and final output aligned.
func statusText(r *Row) string {
	if r.Status.State() == CellPending && r.HasWorktree() {
		return Placeholder
	}

	var b strings.Builder
	pos := func(s string) {
		if s == "" {
			b.WriteString(" ")
		} else {
			b.WriteString(s)
		}
	}

	st, stOK := r.Status.Value()
	if r.Status.State() == CellDegraded {
		pos(DegradedMarker)
		pos(" ")
		pos(" ")
	} else {
		sym := func(ok bool, s string) string {
			if stOK && ok {
				return s
			}
			return ""
		}
		pos(sym(st.Staged > 0, "+"))
		pos(sym(st.Modified > 0, "!"))
		pos(sym(st.Untracked > 0, "?"))
	}

	pos(branchOpSymbol(r, st))
	pos(mainDivergenceSymbol(r))
	pos(upstreamDivergenceSymbol(r))
	pos(worktreeStateSymbol(r))

	return strings.TrimRight(b.String(), " ")
}

// branchOpSymbol is the combined branch/operation position.
// Priority: conflicts ✖ > rebase ↻ > merge ⋈ > would-conflict ⚠ >
// matches-main ≡ > no-commits ∅.
func branchOpSymbol(r *Row, st git.Status) string {
	if st.Conflicted > 0 {
		return "✖"
	}
	if op, ok := r.Op.Value(); ok {
		switch op {
		case git.OpRebase:
			return "↻"
		case git.OpMerge:
			return "⋈"
		}
	}
	if conflicts, ok := r.Conflicts.Value(); ok && conflicts {
		return "⚠"
	}
	if cls, ok := r.Class.Value(); ok {
		switch cls {
		case ClassMatchesMain:
			return "≡"
		case ClassNoCommits:
			return "∅"
		}
	}
	return ""
}

func mainDivergenceSymbol(r *Row) string {
	if r.Primary {
		return "^"
	}
	d, ok := r.Main.Value()
	if !ok {
		return ""
	}
	switch {
	case d.Ahead > 0 && d.Behind > 0:
		return "↕"
	case d.Ahead > 0:
		return "↑"
	case d.Behind > 0:
		return "↓"
	}
	return ""
}

func upstreamDivergenceSymbol(r *Row) string {
	u, ok := r.Upstream.Value()
	if !ok || u.Name == "" {
		return ""
	}
	switch {
	case u.Ahead > 0 && u.Behind > 0:
		return "⇅"
	case u.Ahead > 0:
		return "⇡"
	case u.Behind > 0:
		return "⇣"
	}
	return ""
}

// worktreeStateSymbol: prunable ⌫ > locked ⊠ for worktrees, ⎇ for
// branch-only rows.
func worktreeStateSymbol(r *Row) string {
	switch {
	case r.Prunable:
		return "⌫"
	case r.Locked:
		return "⊠"
	case r.Kind != KindWorktree:
		return "⎇"
	}
	return ""
}

func divergenceCell(c *Cell[Divergence], primary bool) (string, CellClass) {
	switch c.State() {
	case CellPending:
		return "", ClassPlaceholder
	case CellDegraded:
		return DegradedMarker, ClassDegradedCell
	}
	d, _ := c.Value()
	if primary || (d.Ahead == 0 && d.Behind == 0) {
		return "", ClassValue
	}
	var parts []string
	if d.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("↑%d", d.Ahead))
	}
	if d.Behind > 0 {
		parts = append(parts, fmt.Sprintf("↓%d", d.Behind))
	}
	return strings.Join(parts, " "), ClassValue
}

func diffCell(c *Cell[git.DiffStats], col Column) (string, CellClass) {
	switch c.State() {
	case CellPending:
		return "", ClassPlaceholder
	case CellDegraded:
		return DegradedMarker, ClassDegradedCell
	}
	d, _ := c.Value()
	if d.IsZero() {
		return "", ClassValue
	}
	return fmt.Sprintf("+%d -%d", d.Additions, d.Deletions), ClassValue
}

func upstreamCell(c *Cell[UpstreamInfo]) (string, CellClass) {
	switch c.State() {
	case CellPending:
		return "", ClassPlaceholder
	case CellDegraded:
		return DegradedMarker, ClassDegradedCell
	}
	u, _ := c.Value()
	if u.Name == "" || (u.Ahead == 0 && u.Behind == 0) {
		return "", ClassValue
	}
	var parts []string
	if u.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("⇡%d", u.Ahead))
	}
	if u.Behind > 0 {
		parts = append(parts, fmt.Sprintf("⇣%d", u.Behind))
	}
	return strings.Join(parts, " "), ClassValue
}

func ciCell(r *Row) (string, CellClass) {
	switch r.CI.State() {
	case CellPending:
		return Placeholder, ClassPlaceholder
	case CellDegraded:
		return DegradedMarker, ClassDegradedCell
	}
	ci, _ := r.CI.Value()
	text := ciSymbol(ci.State)
	if ci.Stale && text != "" {
		text += "*"
	}
	return text, ClassValue
}

func ciSymbol(s forge.State) string {
	switch s {
	case forge.StatePassed:
		return "✓"
	case forge.StateRunning:
		return "●"
	case forge.StateFailed:
		return "✗"
	case forge.StateConflicts:
		return "⚠"
	case forge.StateError:
		return "!"
	}
	return "-"
}

func urlCell(r *Row) (string, CellClass) {
	switch r.URL.State() {
	case CellPending:
		return Placeholder, ClassPlaceholder
	case CellDegraded:
		return DegradedMarker, ClassDegradedCell
	}
	u, _ := r.URL.Value()
	if u.URL == "" {
		return "", ClassValue
	}
	if u.Active != nil && !*u.Active {
		return u.URL, ClassDim
	}
	return u.URL, ClassValue
}

// Age formats a duration in the compact single-unit style used across
// the table: 42s, 5m, 3h, 2d, 6w, 4mo, 1y.
func Age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 60*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo", int(d.Hours()/(24*30)))
	}
	return fmt.Sprintf("%dy", int(d.Hours()/(24*365)))
}

func collapseHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, home); ok && (rest == "" || rest[0] == filepath.Separator) {
		return "~" + rest
	}
	return path
}

// Layout computes monotonic column widths over the current cell
// contents: a column is always at least as wide as its header and as
// the widest value it has ever shown this invocation.
func Layout(m *Model, cols []Column, now time.Time) map[columnKey]int {
	widths := make(map[columnKey]int, len(cols))
	for _, col := range cols {
		w := runewidth.StringWidth(col.Title)
		for _, r := range m.Rows {
			text, _ := CellText(r, col, now)
			if tw := runewidth.StringWidth(text); tw > w {
				w = tw
			}
		}
		widths[col.Key] = m.Width(col.Key, w)
	}
	return widths
}
