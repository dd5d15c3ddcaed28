package gitrepo

import (
	"container/heap"
	"context"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/revlane/revlane/pkg/errors"
	"github.com/revlane/revlane/pkg/graph"
)

const shortHashLen = 7

// Commit is the list-view model of a commit: enough for a graph row
// without loading trees or diffs. Message holds only the summary line;
// use [Repository.CommitDetails] for the full body and file changes.
type Commit struct {
	Hash         string   `json:"hash"`
	ShortHash    string   `json:"short_hash"`
	Message      string   `json:"message"`
	AuthorName   string   `json:"author_name"`
	AuthorEmail  string   `json:"author_email"`
	Timestamp    int64    `json:"timestamp"`
	ParentHashes []string `json:"parent_hashes"`
}

// Ref converts the commit to the layout engine's input type.
func (c Commit) Ref() graph.CommitRef {
	return graph.CommitRef{Hash: c.Hash, Parents: c.ParentHashes}
}

// FileChange describes one changed file in a commit, diffed against the
// first parent.
type FileChange struct {
	Path    string `json:"path"`
	Status  string `json:"status"` // added, modified, deleted, renamed
	OldPath string `json:"old_path,omitempty"`
}

// CommitDetails is the detail-view model: full message, both identities,
// and the per-file change list.
type CommitDetails struct {
	Hash           string       `json:"hash"`
	Message        string       `json:"message"`
	AuthorName     string       `json:"author_name"`
	AuthorEmail    string       `json:"author_email"`
	CommitterName  string       `json:"committer_name"`
	CommitterEmail string       `json:"committer_email"`
	Timestamp      int64        `json:"timestamp"`
	ParentHashes   []string     `json:"parent_hashes"`
	FilesChanged   []FileChange `json:"files_changed"`
}

// Repository wraps an open Git repository.
// It is read-only and safe for concurrent use: go-git repositories
// support concurrent readers, and Repository adds no mutable state.
type Repository struct {
	repo *gogit.Repository
	path string
}

// Open opens the repository at path, searching parent directories for the
// .git directory the way the git CLI does. A missing repository is
// reported with code NO_REPOSITORY.
func Open(path string) (*Repository, error) {
	if err := errors.ValidateRepoPath(path); err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err == gogit.ErrRepositoryNotExists {
		return nil, errors.Wrap(errors.ErrCodeNoRepository, err, "no git repository at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open repository %s", path)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Wrap adapts an already-open go-git repository, for callers that manage
// storage themselves (in-memory repositories, custom filesystems). path is
// informational and may be empty.
func Wrap(repo *gogit.Repository, path string) *Repository {
	return &Repository{repo: repo, path: path}
}

// Path returns the path the repository was opened with.
func (r *Repository) Path() string { return r.path }

// Head returns the hash HEAD currently points at, or "" for an unborn
// branch (fresh repository with no commits).
func (r *Repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve HEAD")
	}
	return ref.Hash().String(), nil
}

// Commits returns a window of the commit history, newest first, walking
// HEAD and all branch tips. The result order is valid layout input:
// within the window, every commit precedes all of its parents.
//
// skip and limit page through the full walk; limit <= 0 means no limit.
func (r *Repository) Commits(ctx context.Context, skip, limit int) ([]Commit, error) {
	want := 0
	if limit > 0 {
		want = skip + limit
	}
	all, err := r.walk(ctx, want)
	if err != nil {
		return nil, err
	}
	all = sortTopologically(all)
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// walk collects up to want commits (0 = all) in committer-time order.
func (r *Repository) walk(ctx context.Context, want int) ([]Commit, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{
		Order: gogit.LogOrderCommitterTime,
		All:   true,
	})
	if err == plumbing.ErrReferenceNotFound {
		return nil, nil // empty repository
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "walk commits")
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, newCommit(c))
		if want > 0 && len(commits) >= want {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "walk commits")
	}
	return commits, nil
}

// CommitDetails loads the full view of one commit, resolving abbreviated
// hashes. The file list is diffed against the first parent with rename
// detection; a root commit lists its entire tree as added.
func (r *Repository) CommitDetails(ctx context.Context, hash string) (*CommitDetails, error) {
	c, err := r.resolveCommit(hash)
	if err != nil {
		return nil, err
	}

	details := &CommitDetails{
		Hash:           c.Hash.String(),
		Message:        c.Message,
		AuthorName:     c.Author.Name,
		AuthorEmail:    c.Author.Email,
		CommitterName:  c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		Timestamp:      c.Committer.When.Unix(),
	}
	for _, p := range c.ParentHashes {
		details.ParentHashes = append(details.ParentHashes, p.String())
	}

	details.FilesChanged, err = r.fileChanges(ctx, c)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *Repository) resolveCommit(hash string) (*object.Commit, error) {
	if err := errors.ValidateHash(hash); err != nil {
		return nil, err
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommitNotFound, err, "commit %s not found", hash)
	}
	c, err := r.repo.CommitObject(*h)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommitNotFound, err, "commit %s not found", hash)
	}
	return c, nil
}

func (r *Repository) fileChanges(ctx context.Context, c *object.Commit) ([]FileChange, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load tree for %s", c.Hash)
	}

	if c.NumParents() == 0 {
		var files []FileChange
		err := tree.Files().ForEach(func(f *object.File) error {
			files = append(files, FileChange{Path: f.Name, Status: "added"})
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "list tree for %s", c.Hash)
		}
		return files, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load parent of %s", c.Hash)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load parent tree of %s", c.Hash)
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "diff %s", c.Hash)
	}

	files := make([]FileChange, 0, len(changes))
	for _, ch := range changes {
		files = append(files, newFileChange(ch))
	}
	return files, nil
}

func newFileChange(ch *object.Change) FileChange {
	from, to := ch.From.Name, ch.To.Name
	switch {
	case from == "":
		return FileChange{Path: to, Status: "added"}
	case to == "":
		return FileChange{Path: from, Status: "deleted"}
	case from != to:
		return FileChange{Path: to, Status: "renamed", OldPath: from}
	default:
		return FileChange{Path: to, Status: "modified"}
	}
}

func newCommit(c *object.Commit) Commit {
	out := Commit{
		Hash:        c.Hash.String(),
		ShortHash:   shortHash(c.Hash.String()),
		Message:     summaryLine(c.Message),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Timestamp:   c.Committer.When.Unix(),
	}
	for _, p := range c.ParentHashes {
		out.ParentHashes = append(out.ParentHashes, p.String())
	}
	return out
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}

func summaryLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimRight(message[:i], "\r")
	}
	return message
}

// =============================================================================
// Topological Repair
// =============================================================================

// sortTopologically reorders commits so that within the window every
// commit precedes all of its parents, disturbing the incoming time order
// as little as possible. Committer-time walks are almost always already
// valid; this guards against clock skew, which would otherwise fail the
// layout pass with an ordering violation.
func sortTopologically(commits []Commit) []Commit {
	if len(commits) < 2 {
		return commits
	}

	index := make(map[string]int, len(commits))
	for i, c := range commits {
		index[c.Hash] = i
	}

	// blocked counts, per commit, how many of its in-window children have
	// not been emitted yet. A commit is ready once the count drops to 0.
	blocked := make([]int, len(commits))
	for i, c := range commits {
		for _, p := range c.ParentHashes {
			if j, ok := index[p]; ok && j != i {
				blocked[j]++
			}
		}
	}

	ready := &indexHeap{}
	for i, n := range blocked {
		if n == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]Commit, 0, len(commits))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, commits[i])
		for _, p := range commits[i].ParentHashes {
			if j, ok := index[p]; ok && j != i {
				blocked[j]--
				if blocked[j] == 0 {
					heap.Push(ready, j)
				}
			}
		}
	}

	if len(out) != len(commits) {
		// A cycle can only come from corrupt object data; fall back to the
		// walk order and let the layout engine report the violation.
		return commits
	}
	return out
}

// indexHeap is a min-heap of original slice positions, so ties resolve to
// the incoming order.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
