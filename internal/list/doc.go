// Package list implements the progressive worktree listing engine.
//
// A listing runs in phases. The inventory phase issues a fixed number
// of batched git calls (independent of worktree count) and builds the
// row set. The skeleton phase paints the table immediately, with
// placeholders in every computed column. The task phase then fills
// those columns in the background: one independent task per (row,
// column group), dispatched through a bounded semaphore, each with its
// own timeout. Results funnel through a single drain loop which is the
// only writer of the shared model; the renderer repaints changed rows
// in place on a TTY, or waits for settlement and emits one stable
// table (or JSON/TSV) when output is piped.
//
// A failed or timed-out task degrades its own cell and nothing else.
// The listing as a whole only fails when the inventory itself cannot
// be read.
package list
