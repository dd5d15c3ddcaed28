// Package graph computes lane layouts for commit history graphs.
//
// The package turns an ordered stream of commits (hash plus parent hashes)
// into one [LayoutRow] per commit: the column the commit's node occupies,
// whether it is a branch tip, and the line segments needed to draw the
// branch topology for that row. It is the layout core behind the gitk-style
// graph column in revlane's terminal and HTTP frontends.
//
// # Lanes
//
// A lane is a vertical slot in the rendered graph representing one pending
// edge from an already-emitted child down to a specific ancestor hash.
// [LaneTracker] owns the live lane set: lanes are allocated first-fit at
// the lowest free column, looked up by target hash so that edges converging
// on a shared ancestor reuse a single lane, and released the moment their
// target commit is emitted. Released columns are immediately reusable,
// which keeps the graph narrow no matter how many branches come and go.
//
// # Input contract
//
// Commits must arrive in a valid render order: every commit after all of
// its children, as produced by a reverse-chronological or topological walk.
// The first parent hash is the primary parent and keeps mainline history in
// a straight column. Input that violates the ordering contract (a duplicate
// commit, or a parent emitted before one of its children) fails the whole
// pass with [InvariantViolationError]; the engine never self-heals.
//
// # Usage
//
// Stream commits through [Layout]:
//
//	for row, err := range graph.Layout(commits) {
//	    if err != nil {
//	        return err
//	    }
//	    draw(row)
//	}
//
// Rows are produced lazily in input order with no look-ahead, so breaking
// out of the loop early never computes more than was consumed. Each call to
// [Layout] (and each [NewBuilder]) starts from a fresh lane set; layout
// passes over different snapshots share no state.
//
// Colors are deliberately not part of the model: renderers derive them as
// column mod palette size, so a branch whose lane is reclaimed and later
// reissued at a different column changes color. That trade-off is inherited
// from the reference behavior and kept for output stability.
package graph
