package graph

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// commit is a test shorthand for building CommitRef values.
func commit(hash string, parents ...string) CommitRef {
	return CommitRef{Hash: hash, Parents: parents}
}

func pass(col int) LineSegment {
	return LineSegment{FromColumn: col, ToColumn: col, Kind: SegmentPassThrough}
}

func fromAbove(col int) LineSegment {
	return LineSegment{FromColumn: col, ToColumn: col, Kind: SegmentFromAbove}
}

func toParent(from, to int) LineSegment {
	return LineSegment{FromColumn: from, ToColumn: to, Kind: SegmentToParent}
}

func toMerge(from, to int) LineSegment {
	return LineSegment{FromColumn: from, ToColumn: to, IsMerge: true, Kind: SegmentToParent}
}

func TestBuilderRows(t *testing.T) {
	tests := []struct {
		name    string
		commits []CommitRef
		want    []LayoutRow
	}{
		{
			name:    "SingleRootCommit",
			commits: []CommitRef{commit("c1")},
			want: []LayoutRow{
				{Hash: "c1", Column: 0, IsTip: true},
			},
		},
		{
			name: "LinearHistory",
			commits: []CommitRef{
				commit("c3", "c2"),
				commit("c2", "c1"),
				commit("c1"),
			},
			want: []LayoutRow{
				{Hash: "c3", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0)}},
				{Hash: "c2", Column: 0, Lines: []LineSegment{fromAbove(0), toParent(0, 0)}},
				{Hash: "c1", Column: 0, Lines: []LineSegment{fromAbove(0)}},
			},
		},
		{
			name: "SiblingBranchesConverge",
			// c3 and c2 both descend from c1; the second child reuses the
			// lane already waiting for c1 instead of opening a duplicate.
			commits: []CommitRef{
				commit("c3", "c1"),
				commit("c2", "c1"),
				commit("c1"),
			},
			want: []LayoutRow{
				{Hash: "c3", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0)}},
				{Hash: "c2", Column: 1, IsTip: true, Lines: []LineSegment{pass(0), toParent(1, 0)}},
				{Hash: "c1", Column: 0, Lines: []LineSegment{fromAbove(0)}},
			},
		},
		{
			name: "MergeCommit",
			commits: []CommitRef{
				commit("merge", "main1", "feat1"),
				commit("feat1", "base"),
				commit("main1", "base"),
				commit("base"),
			},
			want: []LayoutRow{
				{Hash: "merge", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0), toMerge(0, 1)}},
				{Hash: "feat1", Column: 1, Lines: []LineSegment{pass(0), fromAbove(1), toParent(1, 1)}},
				// main1 converges onto the lane feat1 opened for base.
				{Hash: "main1", Column: 0, Lines: []LineSegment{pass(1), fromAbove(0), toParent(0, 1)}},
				{Hash: "base", Column: 1, Lines: []LineSegment{fromAbove(1)}},
			},
		},
		{
			name: "PassThroughAcrossBranch",
			commits: []CommitRef{
				commit("main3", "main2"),
				commit("feat1", "base"),
				commit("main2", "base"),
				commit("base"),
			},
			want: []LayoutRow{
				{Hash: "main3", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0)}},
				{Hash: "feat1", Column: 1, IsTip: true, Lines: []LineSegment{pass(0), toParent(1, 1)}},
				{Hash: "main2", Column: 0, Lines: []LineSegment{pass(1), fromAbove(0), toParent(0, 1)}},
				{Hash: "base", Column: 1, Lines: []LineSegment{fromAbove(1)}},
			},
		},
		{
			name: "ColumnReuseAfterBranchEnds",
			// An orphan root in column 1 releases its column, which the
			// next new branch tip then reclaims.
			commits: []CommitRef{
				commit("main2", "main1"),
				commit("orphan"),
				commit("tip2", "main0"),
				commit("main1", "main0"),
				commit("main0"),
			},
			want: []LayoutRow{
				{Hash: "main2", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0)}},
				{Hash: "orphan", Column: 1, IsTip: true, Lines: []LineSegment{pass(0)}},
				{Hash: "tip2", Column: 1, IsTip: true, Lines: []LineSegment{pass(0), toParent(1, 1)}},
				{Hash: "main1", Column: 0, Lines: []LineSegment{pass(1), fromAbove(0), toParent(0, 1)}},
				{Hash: "main0", Column: 1, Lines: []LineSegment{fromAbove(1)}},
			},
		},
		{
			name: "OctopusMerge",
			commits: []CommitRef{
				commit("octo", "p1", "p2", "p3"),
				commit("p1"),
				commit("p2"),
				commit("p3"),
			},
			want: []LayoutRow{
				{Hash: "octo", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0), toMerge(0, 1), toMerge(0, 2)}},
				{Hash: "p1", Column: 0, Lines: []LineSegment{pass(1), pass(2), fromAbove(0)}},
				{Hash: "p2", Column: 1, Lines: []LineSegment{pass(2), fromAbove(1)}},
				{Hash: "p3", Column: 2, Lines: []LineSegment{fromAbove(2)}},
			},
		},
		{
			name: "MergeParentAlreadyTracked",
			// The merge's second parent is main1, which already has a lane
			// from main2; the merge joins that lane instead of widening.
			commits: []CommitRef{
				commit("main2", "main1"),
				commit("merge", "feat1", "main1"),
				commit("feat1", "main1"),
				commit("main1"),
			},
			want: []LayoutRow{
				{Hash: "main2", Column: 0, IsTip: true, Lines: []LineSegment{toParent(0, 0)}},
				{Hash: "merge", Column: 1, IsTip: true, Lines: []LineSegment{pass(0), toParent(1, 1), toMerge(1, 0)}},
				{Hash: "feat1", Column: 1, Lines: []LineSegment{pass(0), fromAbove(1), toParent(1, 0)}},
				{Hash: "main1", Column: 0, Lines: []LineSegment{fromAbove(0)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LayoutAll(tt.commits)
			if err != nil {
				t.Fatalf("LayoutAll: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("row count = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !reflect.DeepEqual(got[i], tt.want[i]) {
					t.Errorf("row %d (%s):\n got  %+v\n want %+v", i, got[i].Hash, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestBuilderExampleScenario walks the documented diamond scenario:
// C3 -> C2 -> {C1a, C1b} -> C0, asserting lane convergence on C0 and full
// release at the terminal row.
func TestBuilderExampleScenario(t *testing.T) {
	b := NewBuilder()

	c3, err := b.Push(commit("C3", "C2"))
	if err != nil {
		t.Fatalf("push C3: %v", err)
	}
	if !c3.IsTip || c3.Column != 0 {
		t.Errorf("C3 = column %d tip %v, want column 0 tip true", c3.Column, c3.IsTip)
	}

	c2, err := b.Push(commit("C2", "C1a", "C1b"))
	if err != nil {
		t.Fatalf("push C2: %v", err)
	}
	if c2.Column != 0 || c2.IsTip {
		t.Errorf("C2 = column %d tip %v, want column 0 tip false", c2.Column, c2.IsTip)
	}
	var toParents []LineSegment
	for _, l := range c2.Lines {
		if l.Kind == SegmentToParent {
			toParents = append(toParents, l)
		}
	}
	if len(toParents) != 2 {
		t.Fatalf("C2 to-parent segments = %d, want 2", len(toParents))
	}
	if toParents[0].IsMerge || !toParents[1].IsMerge {
		t.Errorf("C2 merge flags = %v/%v, want false/true", toParents[0].IsMerge, toParents[1].IsMerge)
	}
	if toParents[1].ToColumn == toParents[0].ToColumn {
		t.Error("C2 parents share a column, want distinct lanes")
	}

	c1a, err := b.Push(commit("C1a", "C0"))
	if err != nil {
		t.Fatalf("push C1a: %v", err)
	}
	c1b, err := b.Push(commit("C1b", "C0"))
	if err != nil {
		t.Fatalf("push C1b: %v", err)
	}

	// Only one lane may ever open for C0: both children's to-parent
	// segments land in the same column.
	var c0Cols []int
	for _, row := range []LayoutRow{c1a, c1b} {
		for _, l := range row.Lines {
			if l.Kind == SegmentToParent {
				c0Cols = append(c0Cols, l.ToColumn)
			}
		}
	}
	if len(c0Cols) != 2 || c0Cols[0] != c0Cols[1] {
		t.Errorf("C0 target columns = %v, want one shared column", c0Cols)
	}
	if b.Lanes() != 1 {
		t.Errorf("live lanes before C0 = %d, want 1", b.Lanes())
	}

	c0, err := b.Push(commit("C0"))
	if err != nil {
		t.Fatalf("push C0: %v", err)
	}
	if c0.IsTip {
		t.Error("C0 is a tip, want false")
	}
	for _, l := range c0.Lines {
		if l.Kind == SegmentToParent {
			t.Errorf("C0 has outgoing segment %+v, want none", l)
		}
	}
	if b.Lanes() != 0 {
		t.Errorf("live lanes after C0 = %d, want 0", b.Lanes())
	}
}

func TestBuilderLinearHistoryProperties(t *testing.T) {
	const n = 50
	commits := make([]CommitRef, n)
	for i := 0; i < n; i++ {
		c := commit(fmt.Sprintf("c%d", n-i))
		if i < n-1 {
			c.Parents = []string{fmt.Sprintf("c%d", n-i-1)}
		}
		commits[i] = c
	}

	rows, err := LayoutAll(commits)
	if err != nil {
		t.Fatalf("LayoutAll: %v", err)
	}
	for i, row := range rows {
		if row.Column != 0 {
			t.Errorf("row %d column = %d, want 0", i, row.Column)
		}
		if row.IsTip != (i == 0) {
			t.Errorf("row %d IsTip = %v", i, row.IsTip)
		}
		for _, l := range row.Lines {
			if l.Kind == SegmentPassThrough {
				t.Errorf("row %d has pass-through in linear history", i)
			}
		}
	}
}

func TestBuilderColumnUniquenessPerRow(t *testing.T) {
	// A braided history with merges, convergence, and terminating branches.
	commits := []CommitRef{
		commit("h", "g", "f"),
		commit("g", "e"),
		commit("f", "e", "d"),
		commit("e", "c"),
		commit("d", "c"),
		commit("c", "b", "a"),
		commit("b"),
		commit("a"),
	}

	b := NewBuilder()
	for _, c := range commits {
		row, err := b.Push(c)
		if err != nil {
			t.Fatalf("push %s: %v", c.Hash, err)
		}
		seen := make(map[int]bool)
		for _, l := range row.Lines {
			if l.Kind != SegmentPassThrough {
				continue
			}
			if seen[l.FromColumn] {
				t.Errorf("row %s: duplicate pass-through column %d", row.Hash, l.FromColumn)
			}
			if l.FromColumn == row.Column {
				t.Errorf("row %s: pass-through on the commit's own column", row.Hash)
			}
			seen[l.FromColumn] = true
		}
	}
	if b.Lanes() != 0 {
		t.Errorf("live lanes after full history = %d, want 0", b.Lanes())
	}
}

func TestBuilderReplayIsDeterministic(t *testing.T) {
	commits := []CommitRef{
		commit("f", "d", "e"),
		commit("e", "c"),
		commit("d", "c"),
		commit("c", "a", "b"),
		commit("b"),
		commit("a"),
	}

	first, err := LayoutAll(commits)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := LayoutAll(commits)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("replay produced different rows")
	}
}

func TestBuilderInvariantViolations(t *testing.T) {
	tests := []struct {
		name     string
		commits  []CommitRef
		wantHash string
	}{
		{
			name: "DuplicateCommit",
			commits: []CommitRef{
				commit("a", "b"),
				commit("a", "b"),
			},
			wantHash: "a",
		},
		{
			name: "ParentEmittedBeforeChild",
			commits: []CommitRef{
				commit("b", "a"),
				commit("a"),
				commit("x", "a"),
			},
			wantHash: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LayoutAll(tt.commits)
			var iv *InvariantViolationError
			if !errors.As(err, &iv) {
				t.Fatalf("error = %v, want InvariantViolationError", err)
			}
			if iv.Hash != tt.wantHash {
				t.Errorf("offending hash = %q, want %q", iv.Hash, tt.wantHash)
			}
		})
	}
}
