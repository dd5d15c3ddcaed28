package graph

// SegmentKind identifies how a line segment relates to the row's commit.
// The values match the wire format consumed by the renderers.
type SegmentKind string

const (
	// SegmentPassThrough is a lane that is open but untouched by this row,
	// drawn as a straight vertical continuation.
	SegmentPassThrough SegmentKind = "pass_through"

	// SegmentFromAbove is the edge arriving from the previous row into this
	// row's commit node.
	SegmentFromAbove SegmentKind = "from_above"

	// SegmentToParent is an edge leaving this row's commit down toward one
	// of its parents.
	SegmentToParent SegmentKind = "to_parent"
)

// LineSegment is one connector line of a row. Segments reference columns,
// not lane identities: column reuse across rows is intentional and is the
// mechanism by which the lane count stays bounded.
type LineSegment struct {
	FromColumn int         `json:"from_column"`
	ToColumn   int         `json:"to_column"`
	IsMerge    bool        `json:"is_merge"`
	Kind       SegmentKind `json:"kind"`
}

// LayoutRow is the rendering model for a single commit: its assigned
// column, whether it is a newly discovered branch tip, and the segments to
// draw, ordered pass-throughs first (ascending column), then the from-above
// segment for non-tips, then to-parent segments in parent order.
type LayoutRow struct {
	Hash   string        `json:"hash"`
	Column int           `json:"column"`
	IsTip  bool          `json:"is_tip"`
	Lines  []LineSegment `json:"lines"`
}

// Builder consumes commits one row at a time and produces one [LayoutRow]
// per commit. Rows are strictly sequential; a row's lane mutations are
// fully applied before the row is returned, so no look-ahead is ever
// needed. Builder is not safe for concurrent use.
//
// A Builder covers exactly one layout pass. Repeated passes over a
// refreshed commit list need a fresh Builder; lane state never carries
// across snapshots.
type Builder struct {
	lanes *LaneTracker
	seen  map[string]struct{}
}

// NewBuilder creates a builder with an empty lane set.
func NewBuilder() *Builder {
	return &Builder{
		lanes: NewLaneTracker(),
		seen:  make(map[string]struct{}),
	}
}

// Push lays out the next commit and returns its row.
//
// The commit's column is the lane already waiting for it, if one exists;
// otherwise the commit is a tip and sits at the lowest free column. The
// primary parent continues the commit's column (or converges onto a lane
// another child already opened for the same ancestor); each merge parent
// joins its existing lane or opens a new one at the lowest free column.
//
// Push fails with [InvariantViolationError] on duplicate commits or on a
// parent that was already emitted, and the pass must then be abandoned.
func (b *Builder) Push(c CommitRef) (LayoutRow, error) {
	if _, dup := b.seen[c.Hash]; dup {
		return LayoutRow{}, violation(c.Hash, "duplicate commit in input stream")
	}
	for _, p := range c.Parents {
		if _, emitted := b.seen[p]; emitted {
			return LayoutRow{}, violation(p, "parent emitted before child %s", c.Hash)
		}
	}
	b.seen[c.Hash] = struct{}{}

	ownCol, found := b.lanes.FindLaneFor(c.Hash)
	isTip := !found
	if isTip {
		ownCol = b.lanes.NextFreeColumn()
	}

	row := LayoutRow{Hash: c.Hash, Column: ownCol, IsTip: isTip}

	// Untouched lanes continue straight through this row.
	for _, col := range b.lanes.ActiveColumns() {
		if col == ownCol {
			continue
		}
		row.Lines = append(row.Lines, LineSegment{
			FromColumn: col,
			ToColumn:   col,
			Kind:       SegmentPassThrough,
		})
	}

	if found {
		row.Lines = append(row.Lines, LineSegment{
			FromColumn: ownCol,
			ToColumn:   ownCol,
			Kind:       SegmentFromAbove,
		})
	}

	if c.IsRoot() {
		// Terminal commit: its lane is satisfied and nothing continues it.
		// A root tip never opens a lane at all.
		if found {
			if err := b.lanes.ReleaseLane(ownCol); err != nil {
				return LayoutRow{}, err
			}
		}
		return row, nil
	}

	if err := b.resolvePrimary(&row, c.PrimaryParent(), found); err != nil {
		return LayoutRow{}, err
	}
	for _, p := range c.MergeParents() {
		col, open := b.lanes.FindLaneFor(p)
		if !open {
			col = b.lanes.AllocateLane(p)
		}
		row.Lines = append(row.Lines, LineSegment{
			FromColumn: row.Column,
			ToColumn:   col,
			IsMerge:    true,
			Kind:       SegmentToParent,
		})
	}
	return row, nil
}

// resolvePrimary connects the row's commit to its first parent. Three
// cases: the parent already has a lane from a sibling branch (converge onto
// it and give up our own column), the commit arrived on a lane (retarget it
// in place so the branch stays straight), or the commit is a fresh tip
// (open a lane for the parent at the tip's column).
func (b *Builder) resolvePrimary(row *LayoutRow, parent string, hadLane bool) error {
	if target, open := b.lanes.FindLaneFor(parent); open {
		if hadLane {
			if err := b.lanes.ReleaseLane(row.Column); err != nil {
				return err
			}
		}
		row.Lines = append(row.Lines, LineSegment{
			FromColumn: row.Column,
			ToColumn:   target,
			Kind:       SegmentToParent,
		})
		return nil
	}

	if hadLane {
		if err := b.lanes.RetargetLane(row.Column, parent); err != nil {
			return err
		}
	} else {
		b.lanes.AllocateLane(parent) // lowest free column == row.Column
	}
	row.Lines = append(row.Lines, LineSegment{
		FromColumn: row.Column,
		ToColumn:   row.Column,
		Kind:       SegmentToParent,
	})
	return nil
}

// Lanes exposes the live lane count, mainly for diagnostics and tests.
func (b *Builder) Lanes() int { return b.lanes.Len() }
