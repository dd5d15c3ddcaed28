package gitrepo

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/revlane/revlane/pkg/errors"
)

// RefType classifies a ref decoration.
type RefType string

const (
	RefBranch       RefType = "branch"
	RefRemoteBranch RefType = "remote_branch"
	RefTag          RefType = "tag"
)

// RefInfo is one ref decoration on a commit: a local branch, a remote
// branch, or a tag. IsHead marks the local branch HEAD points at.
type RefInfo struct {
	Name   string  `json:"name"`
	Type   RefType `json:"ref_type"`
	IsHead bool    `json:"is_head"`
}

// CollectRefs maps commit hashes to their ref decorations. Annotated tags
// are peeled to the commit they ultimately point at. Decorations on one
// commit are ordered branches first, then remote branches, then tags,
// alphabetically within each group, so output is deterministic.
func (r *Repository) CollectRefs() (map[string][]RefInfo, error) {
	refs := make(map[string][]RefInfo)

	headHash := ""
	headName := ""
	if head, err := r.repo.Head(); err == nil {
		headHash = head.Hash().String()
		if head.Name().IsBranch() {
			headName = head.Name().Short()
		}
	}

	iter, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list references")
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			target := ref.Hash().String()
			refs[target] = append(refs[target], RefInfo{
				Name:   name.Short(),
				Type:   RefBranch,
				IsHead: name.Short() == headName && target == headHash,
			})
		case name.IsRemote():
			target := ref.Hash().String()
			refs[target] = append(refs[target], RefInfo{
				Name: name.Short(),
				Type: RefRemoteBranch,
			})
		case name.IsTag():
			target := r.peelTag(ref.Hash())
			refs[target] = append(refs[target], RefInfo{
				Name: name.Short(),
				Type: RefTag,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "collect references")
	}

	for _, infos := range refs {
		sortRefs(infos)
	}
	return refs, nil
}

// peelTag resolves an annotated tag object to its target commit hash.
// Lightweight tags already point at the commit.
func (r *Repository) peelTag(hash plumbing.Hash) string {
	for {
		tag, err := r.repo.TagObject(hash)
		if err != nil {
			return hash.String()
		}
		hash = tag.Target
	}
}

var refTypeRank = map[RefType]int{
	RefBranch:       0,
	RefRemoteBranch: 1,
	RefTag:          2,
}

func sortRefs(infos []RefInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if refTypeRank[infos[i].Type] != refTypeRank[infos[j].Type] {
			return refTypeRank[infos[i].Type] < refTypeRank[infos[j].Type]
		}
		return infos[i].Name < infos[j].Name
	})
}
