package list

import (
	"context"
	"time"

	"github.com/twig-dev/twig/internal/cmd"
	"github.com/twig-dev/twig/internal/log"
)

// DefaultDrainDeadline caps the whole enrichment phase. Tasks missing
// past the deadline degrade their cells instead of hanging the listing.
const DefaultDrainDeadline = 30 * time.Second

// Drain consumes task outcomes until every dispatched task reported,
// the deadline passes, or ctx is cancelled. It is the model's single
// writer: apply closures run here and nowhere else, so no two results
// can interleave writes to the same row.
//
// onUpdate fires after each applied outcome with the changed row index;
// the renderer uses it to repaint. A nil onUpdate is allowed.
//
// Failures and timeouts never propagate: they degrade the owning cell
// and the drain continues. Drain's own return is purely informational
// via the model's progress counters.
func Drain(ctx context.Context, m *Model, tasks []Task, results <-chan Result, deadline time.Duration, onUpdate func(row int)) {
	if deadline <= 0 {
		deadline = DefaultDrainDeadline
	}
	logger := log.FromContext(ctx)

	// Outstanding (row, kind) pairs, for deadline diagnostics.
	outstanding := make(map[taskID]bool, len(tasks))
	for _, t := range tasks {
		outstanding[taskID{t.Row, t.Kind}] = true
	}
	m.total = len(tasks)
	m.done = 0

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for m.done < m.total {
		select {
		case res, ok := <-results:
			if !ok {
				// Channel closed with tasks unaccounted for; degrade
				// whatever never reported.
				degradeOutstanding(m, outstanding, "no result")
				return
			}
			if res.Row < 0 || res.Row >= len(m.Rows) {
				logger.Verbosef("dropping result for invalid row %d (%s)", res.Row, res.Kind)
				continue
			}
			id := taskID{res.Row, res.Kind}
			if !outstanding[id] {
				// Duplicate or unexpected outcome: never apply twice.
				logger.Verbosef("dropping duplicate result for row %d (%s)", res.Row, res.Kind)
				continue
			}
			delete(outstanding, id)
			m.done++

			row := m.Rows[res.Row]
			if res.Err != nil {
				reason := res.Err.Error()
				if cmd.IsTimeout(res.Err) {
					reason = "timed out"
				}
				degradeCell(row, res.Kind, reason)
				logger.Verbosef("%s task for %s: %s", res.Kind, row.Branch, reason)
			} else if res.apply != nil {
				res.apply(row)
			}
			if onUpdate != nil {
				onUpdate(res.Row)
			}

		case <-timer.C:
			logger.Verbosef("listing deadline reached with %d of %d tasks outstanding", m.total-m.done, m.total)
			degradeOutstanding(m, outstanding, "deadline exceeded")
			return

		case <-ctx.Done():
			degradeOutstanding(m, outstanding, "cancelled")
			return
		}
	}
}

type taskID struct {
	row  int
	kind TaskKind
}

func degradeOutstanding(m *Model, outstanding map[taskID]bool, reason string) {
	for id := range outstanding {
		if id.row >= 0 && id.row < len(m.Rows) {
			degradeCell(m.Rows[id.row], id.kind, reason)
		}
		m.done++
	}
	clear(outstanding)
}

// degradeCell routes a failure to the one cell the task kind owns.
func degradeCell(r *Row, kind TaskKind, reason string) {
	switch kind {
	case TaskAheadBehind:
		r.Main.Degrade(reason)
	case TaskBranchDiff:
		r.Diff.Degrade(reason)
	case TaskWorkingDiff:
		r.Working.Degrade(reason)
	case TaskStatus:
		r.Status.Degrade(reason)
	case TaskOperation:
		r.Op.Degrade(reason)
	case TaskUpstream:
		r.Upstream.Degrade(reason)
	case TaskClassify:
		r.Class.Degrade(reason)
	case TaskCI:
		r.CI.Degrade(reason)
	case TaskConflicts:
		r.Conflicts.Degrade(reason)
	case TaskURL:
		r.URL.Degrade(reason)
	}
}
