// Package pkg provides the core libraries for revlane commit-graph rendering.
//
// # Overview
//
// Revlane walks a Git repository's history and lays each commit out on a
// lane grid the way graphical Git clients draw branches. The pkg directory
// is organized into five main areas:
//
//  1. [gitrepo] - Repository access (walking, refs, diffs, watching)
//  2. [graph] - Lane layout engine (the core algorithm)
//  3. [render] - Output renderers (ANSI text, DOT, SVG, JSON model)
//  4. [pipeline] - Orchestration (walk → layout → render)
//  5. [cache] - Result caching (file, Redis)
//
// # Architecture
//
// The typical data flow through revlane:
//
//	Git repository (.git)
//	         ↓
//	    [gitrepo] package (walk commits newest-first, collect refs)
//	         ↓
//	    [graph] package (assign lanes, emit per-row line segments)
//	         ↓
//	    [render] package (draw text/DOT/SVG from laid-out rows)
//	         ↓
//	    terminal / file / HTTP API output
//
// # Quick Start
//
// Walk a repository and draw its graph:
//
//	import (
//	    "context"
//	    "github.com/revlane/revlane/pkg/gitrepo"
//	    "github.com/revlane/revlane/pkg/graph"
//	    "github.com/revlane/revlane/pkg/render"
//	    "github.com/revlane/revlane/pkg/render/text"
//	)
//
//	repo, err := gitrepo.Open(".")
//	commits, err := repo.Commits(context.Background(), 0, 100)
//
//	refs := make([]graph.CommitRef, len(commits))
//	for i, c := range commits {
//	    refs[i] = c.Ref()
//	}
//	rows, err := graph.LayoutAll(refs)
//
//	var decorated []render.Commit
//	for i, c := range commits {
//	    decorated = append(decorated, render.NewCommit(c, rows[i], nil))
//	}
//	os.Stdout.Write(text.Render(decorated, text.Options{}))
//
// The [pipeline] package wraps this flow with validation, caching, and
// progress hooks; most callers should start there.
package pkg
