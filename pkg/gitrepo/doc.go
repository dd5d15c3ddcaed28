// Package gitrepo reads commit history and refs from a Git repository.
//
// It is the upstream collaborator of the layout engine in [pkg/graph]: it
// produces commit windows in a valid render order (every commit after all
// of its children, newest first by committer time) together with the ref
// decorations the frontends attach to graph rows.
//
// The package wraps go-git and never shells out. Walks run with
// committer-time ordering over HEAD and every branch tip, then pass
// through a stable topological repair so clock skew between machines can
// never feed the layout engine a parent before one of its children.
package gitrepo
