// Package render defines the shared input model for graph renderers.
//
// A [Commit] is a walked commit joined with its layout row and ref
// decorations. The subpackages consume slices of them: [text] draws an
// ANSI graph for terminals, [dot] emits Graphviz DOT and SVG.
package render

import (
	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/graph"
)

// Commit is one fully decorated graph row. The JSON shape is the wire
// format served by the HTTP API and emitted by the json output format.
type Commit struct {
	Hash         string              `json:"hash"`
	ShortHash    string              `json:"short_hash"`
	Message      string              `json:"message"`
	AuthorName   string              `json:"author_name"`
	AuthorEmail  string              `json:"author_email"`
	Timestamp    int64               `json:"timestamp"`
	ParentHashes []string            `json:"parent_hashes"`
	Column       int                 `json:"column"`
	IsTip        bool                `json:"is_tip"`
	Lines        []graph.LineSegment `json:"lines"`
	Refs         []gitrepo.RefInfo   `json:"refs,omitempty"`
}

// NewCommit joins a walked commit with its layout row and decorations.
func NewCommit(c gitrepo.Commit, row graph.LayoutRow, refs []gitrepo.RefInfo) Commit {
	return Commit{
		Hash:         c.Hash,
		ShortHash:    c.ShortHash,
		Message:      c.Message,
		AuthorName:   c.AuthorName,
		AuthorEmail:  c.AuthorEmail,
		Timestamp:    c.Timestamp,
		ParentHashes: c.ParentHashes,
		Column:       row.Column,
		IsTip:        row.IsTip,
		Lines:        row.Lines,
		Refs:         refs,
	}
}

// MaxColumn returns the highest column any commit or line segment
// touches, or -1 for an empty graph. Renderers size their grid from it.
func MaxColumn(commits []Commit) int {
	max := -1
	for _, c := range commits {
		if c.Column > max {
			max = c.Column
		}
		for _, l := range c.Lines {
			if l.FromColumn > max {
				max = l.FromColumn
			}
			if l.ToColumn > max {
				max = l.ToColumn
			}
		}
	}
	return max
}

// Palette is a cyclic list of hex colors indexed by lane column.
type Palette []string

// DefaultPalette is the standard lane palette. Colors repeat once the
// graph grows wider than the palette.
var DefaultPalette = Palette{
	"#f44e4e", // red
	"#4e9af4", // blue
	"#4ec26a", // green
	"#e6a23c", // amber
	"#b06af4", // purple
	"#26c6da", // cyan
	"#f46ab0", // pink
	"#9ccc65", // lime
}

// Color returns the palette color for a column.
func (p Palette) Color(column int) string {
	if len(p) == 0 {
		return DefaultPalette.Color(column)
	}
	if column < 0 {
		column = 0
	}
	return p[column%len(p)]
}
