package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/twig-dev/twig/internal/git"
)

// SchemaVersion identifies the JSON output layout. Bump on breaking
// field changes.
const SchemaVersion = "1"

// Format selects the settled output encoding.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatTSV
)

// StaticRenderer buffers nothing and prints nothing until Finish. It
// produces a single stable table without escape sequences, suitable for
// pipes and files.
type StaticRenderer struct {
	w      io.Writer
	cols   []Column
	format Format
}

func NewStaticRenderer(w io.Writer, cols []Column, format Format) *StaticRenderer {
	return &StaticRenderer{w: w, cols: cols, format: format}
}

func (s *StaticRenderer) Skeleton(m *Model) error           { return nil }
func (s *StaticRenderer) RowChanged(m *Model, row int) error { return nil }

func (s *StaticRenderer) Finish(m *Model) error {
	switch s.format {
	case FormatJSON:
		return writeJSON(s.w, m)
	case FormatTSV:
		return writeTSV(s.w, s.cols, m)
	default:
		return writeTable(s.w, s.cols, m)
	}
}

// writeTable prints the plain table once. Cells still pending at this
// point (deadline hit before every task reported) render as degraded.
func writeTable(w io.Writer, cols []Column, m *Model) error {
	now := time.Now()
	widths := Layout(m, cols, now)
	if _, err := fmt.Fprintln(w, renderHeader(cols, widths, false)); err != nil {
		return err
	}
	for _, r := range m.Rows {
		if _, err := fmt.Fprintln(w, renderRow(r, cols, widths, now, false)); err != nil {
			return err
		}
	}
	return nil
}

func writeTSV(w io.Writer, cols []Column, m *Model) error {
	now := time.Now()
	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.Title
	}
	if _, err := fmt.Fprintln(w, strings.Join(titles, "\t")); err != nil {
		return err
	}
	for _, r := range m.Rows {
		fields := make([]string, len(cols))
		for i, col := range cols {
			text, _ := CellText(r, col, now)
			fields[i] = text
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// JSON field types. Cells that never settled, were degraded, or do not
// apply to a row kind serialize as null rather than a zero value.

type jsonDivergence struct {
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
}

type jsonDiff struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Files     int `json:"files"`
}

type jsonStatus struct {
	Staged     int `json:"staged"`
	Modified   int `json:"modified"`
	Untracked  int `json:"untracked"`
	Conflicted int `json:"conflicted"`
}

type jsonUpstream struct {
	Name   string `json:"name"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
}

type jsonCommit struct {
	Hash    string `json:"hash"`
	Time    string `json:"time"`
	Subject string `json:"subject"`
}

type jsonCI struct {
	State  string `json:"state"`
	Source string `json:"source"`
	Stale  bool   `json:"stale"`
	URL    string `json:"url,omitempty"`
}

type jsonURL struct {
	URL    string `json:"url"`
	Active *bool  `json:"active"`
}

type jsonRow struct {
	Branch         string          `json:"branch"`
	Kind           string          `json:"kind"`
	Path           string          `json:"path,omitempty"`
	Head           string          `json:"head,omitempty"`
	Primary        bool            `json:"primary"`
	Current        bool            `json:"current"`
	Detached       bool            `json:"detached"`
	Locked         bool            `json:"locked"`
	LockReason     string          `json:"lock_reason,omitempty"`
	Prunable       bool            `json:"prunable"`
	PruneReason    string          `json:"prune_reason,omitempty"`
	Commit         *jsonCommit     `json:"commit"`
	Main           *jsonDivergence `json:"main"`
	MainDiff       *jsonDiff       `json:"main_diff"`
	WorkingDiff    *jsonDiff       `json:"working_diff"`
	Status         *jsonStatus     `json:"status"`
	Operation      *string         `json:"operation"`
	Upstream       *jsonUpstream   `json:"upstream"`
	Classification *string         `json:"classification"`
	CI             *jsonCI         `json:"ci,omitempty"`
	Conflicts      *bool           `json:"conflicts"`
	URL            *jsonURL        `json:"url,omitempty"`
}

type jsonDoc struct {
	SchemaVersion string    `json:"schema_version"`
	PrimaryBranch string    `json:"primary_branch"`
	Worktrees     []jsonRow `json:"worktrees"`
}

func writeJSON(w io.Writer, m *Model) error {
	doc := jsonDoc{
		SchemaVersion: SchemaVersion,
		PrimaryBranch: m.PrimaryBranch,
		Worktrees:     make([]jsonRow, 0, len(m.Rows)),
	}
	for _, r := range m.Rows {
		doc.Worktrees = append(doc.Worktrees, rowToJSON(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func rowToJSON(r *Row) jsonRow {
	row := jsonRow{
		Branch:      r.Branch,
		Kind:        r.Kind.String(),
		Path:        r.Path,
		Head:        r.Head,
		Primary:     r.Primary,
		Current:     r.Current,
		Detached:    r.Detached,
		Locked:      r.Locked,
		LockReason:  r.LockReason,
		Prunable:    r.Prunable,
		PruneReason: r.PruneReason,
	}
	if r.Commit.Hash != "" {
		row.Commit = &jsonCommit{
			Hash:    r.Commit.Hash,
			Time:    r.Commit.Time.UTC().Format(time.RFC3339),
			Subject: r.Commit.Subject,
		}
	}
	if v, ok := r.Main.Value(); ok {
		row.Main = &jsonDivergence{Ahead: v.Ahead, Behind: v.Behind}
	}
	if v, ok := r.Diff.Value(); ok {
		row.MainDiff = diffToJSON(v)
	}
	if v, ok := r.Working.Value(); ok {
		row.WorkingDiff = diffToJSON(v)
	}
	if v, ok := r.Status.Value(); ok {
		row.Status = &jsonStatus{
			Staged:     v.Staged,
			Modified:   v.Modified,
			Untracked:  v.Untracked,
			Conflicted: v.Conflicted,
		}
	}
	if v, ok := r.Op.Value(); ok && v != git.OpNone {
		op := string(v)
		row.Operation = &op
	}
	if v, ok := r.Upstream.Value(); ok && v.Name != "" {
		row.Upstream = &jsonUpstream{Name: v.Name, Ahead: v.Ahead, Behind: v.Behind}
	}
	if v, ok := r.Class.Value(); ok {
		cls := classificationSlug(v)
		row.Classification = &cls
	}
	if v, ok := r.CI.Value(); ok {
		row.CI = &jsonCI{
			State:  string(v.State),
			Source: string(v.Source),
			Stale:  v.Stale,
			URL:    v.URL,
		}
	}
	if v, ok := r.Conflicts.Value(); ok {
		conflicts := v
		row.Conflicts = &conflicts
	}
	if v, ok := r.URL.Value(); ok {
		row.URL = &jsonURL{URL: v.URL, Active: v.Active}
	}
	return row
}

func diffToJSON(d git.DiffStats) *jsonDiff {
	return &jsonDiff{Additions: d.Additions, Deletions: d.Deletions, Files: d.Files}
}

func classificationSlug(c Classification) string {
	switch c {
	case ClassMatchesMain:
		return "matches_main"
	case ClassNoCommits:
		return "no_commits"
	default:
		return "normal"
	}
}
