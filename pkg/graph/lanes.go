package graph

import (
	"container/heap"
	"slices"
)

// columnHeap is a min-heap of released column indices, used to hand out the
// lowest free column in O(log n) instead of scanning for holes.
type columnHeap []int

func (h columnHeap) Len() int           { return len(h) }
func (h columnHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h columnHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *columnHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *columnHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// LaneTracker owns the set of live lanes during one layout pass.
// Each lane binds a column to the ancestor hash it is waiting for.
//
// Two invariants hold at all times: no two live lanes share a column, and
// no two live lanes share a target hash. [Builder] maintains the second by
// checking [LaneTracker.FindLaneFor] before every allocation; the tracker
// rejects operations that would break either one.
//
// The zero value is not usable - use [NewLaneTracker]. A tracker must not
// be reused across independent layout passes.
type LaneTracker struct {
	byColumn map[int]string // live column -> target hash
	byTarget map[string]int // target hash -> live column
	free     columnHeap     // released columns below next
	next     int            // lowest column never allocated
}

// NewLaneTracker creates an empty lane tracker.
func NewLaneTracker() *LaneTracker {
	return &LaneTracker{
		byColumn: make(map[int]string),
		byTarget: make(map[string]int),
	}
}

// FindLaneFor returns the column of the lane waiting for hash, if any.
// This is how converging edges discover an already-open lane instead of
// allocating a duplicate.
func (t *LaneTracker) FindLaneFor(hash string) (int, bool) {
	col, ok := t.byTarget[hash]
	return col, ok
}

// AllocateLane opens a lane targeting hash at the lowest free column and
// returns that column. Released columns are reused before the lane set is
// widened, which is what keeps the rendered graph narrow. The caller must
// have checked FindLaneFor first; allocating a second lane for a hash that
// already has one silently rebinds the lookup and breaks layout.
func (t *LaneTracker) AllocateLane(hash string) int {
	col := t.takeFreeColumn()
	t.byColumn[col] = hash
	t.byTarget[hash] = col
	return col
}

// ReleaseLane closes the lane at column, making the column immediately
// available to AllocateLane. Releasing a column with no live lane means the
// caller fed a non-topological commit order and is reported as an
// [InvariantViolationError].
func (t *LaneTracker) ReleaseLane(column int) error {
	hash, ok := t.byColumn[column]
	if !ok {
		return violation("", "release of column %d with no live lane", column)
	}
	delete(t.byColumn, column)
	delete(t.byTarget, hash)
	heap.Push(&t.free, column)
	return nil
}

// RetargetLane rebinds the lane at column to wait for hash instead of its
// current target. Primary-parent continuation uses this to keep a linear
// branch in one column without a release/reallocate round trip.
func (t *LaneTracker) RetargetLane(column int, hash string) error {
	old, ok := t.byColumn[column]
	if !ok {
		return violation(hash, "retarget of column %d with no live lane", column)
	}
	if prev, taken := t.byTarget[hash]; taken && prev != column {
		return violation(hash, "retarget would duplicate lane for target (columns %d and %d)", prev, column)
	}
	delete(t.byTarget, old)
	t.byColumn[column] = hash
	t.byTarget[hash] = column
	return nil
}

// NextFreeColumn returns the column the next AllocateLane call would use,
// without allocating. Tips use this to position commits whose own column
// never becomes a lane (root tips and tips converging onto an open lane).
func (t *LaneTracker) NextFreeColumn() int {
	if len(t.free) > 0 {
		return t.free[0]
	}
	return t.next
}

// ActiveColumns returns the live columns in ascending order.
// These are exactly the columns a renderer draws as pass-through lines on
// a row that does not touch them.
func (t *LaneTracker) ActiveColumns() []int {
	cols := make([]int, 0, len(t.byColumn))
	for col := range t.byColumn {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}

// Len returns the number of live lanes.
func (t *LaneTracker) Len() int { return len(t.byColumn) }

func (t *LaneTracker) takeFreeColumn() int {
	if len(t.free) > 0 {
		return heap.Pop(&t.free).(int)
	}
	col := t.next
	t.next++
	return col
}
