package graph

import "iter"

// Layout lazily transforms an ordered commit stream into layout rows.
// Row i corresponds exactly to input commit i and is produced only after
// all of its lane mutations are applied. Breaking out of the range loop
// stops the pass without materializing the remaining input, which is how
// callers render just the first N rows of a large history.
//
// On an ordering violation the offending row is yielded with a non-nil
// error and the sequence ends; earlier rows remain valid.
func Layout(commits iter.Seq[CommitRef]) iter.Seq2[LayoutRow, error] {
	return func(yield func(LayoutRow, error) bool) {
		b := NewBuilder()
		for c := range commits {
			row, err := b.Push(c)
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// LayoutAll lays out a fully materialized commit list.
// It is equivalent to draining [Layout] and is deterministic: two calls
// over the same list yield identical row slices.
func LayoutAll(commits []CommitRef) ([]LayoutRow, error) {
	b := NewBuilder()
	rows := make([]LayoutRow, 0, len(commits))
	for _, c := range commits {
		row, err := b.Push(c)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
