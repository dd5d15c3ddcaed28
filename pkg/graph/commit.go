package graph

// CommitRef is the minimal view of a commit the layout engine needs.
// Values are supplied by the repository walker and never mutated here.
type CommitRef struct {
	// Hash uniquely identifies the commit within one layout pass.
	Hash string `json:"hash"`

	// Parents lists parent hashes in commit order. Parents[0] is the
	// primary (first) parent; any further entries are merge parents.
	Parents []string `json:"parent_hashes"`
}

// PrimaryParent returns the first parent hash, or "" for a root commit.
func (c CommitRef) PrimaryParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// MergeParents returns the parent hashes after the first, or nil.
// The returned slice aliases Parents and must not be modified.
func (c CommitRef) MergeParents() []string {
	if len(c.Parents) < 2 {
		return nil
	}
	return c.Parents[1:]
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitRef) IsMerge() bool { return len(c.Parents) > 1 }

// IsRoot reports whether the commit has no parents.
func (c CommitRef) IsRoot() bool { return len(c.Parents) == 0 }
