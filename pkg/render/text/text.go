// Package text renders a commit graph as ANSI art for terminals.
//
// Each commit produces one line with the node marker, short hash, ref
// decorations, and message summary, followed by a connector line drawing
// the edges down to the next row. Lanes are colored by column.
package text

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/graph"
	"github.com/revlane/revlane/pkg/render"
)

// Options configures text rendering.
type Options struct {
	// Palette maps columns to colors. Nil uses render.DefaultPalette.
	Palette render.Palette

	// Color enables ANSI styling. Off, the output is plain runes.
	Color bool
}

const cellWidth = 2

// markers: tips get a hollow node so branch heads stand out in a wall
// of history.
const (
	markerCommit = '●'
	markerTip    = '○'
)

var (
	hashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e6a23c"))
	refStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#26c6da")).Bold(true)
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec26a")).Bold(true)
)

// cell is one rune of the graph area plus the column that owns its color.
// A column of -1 renders unstyled.
type cell struct {
	r   rune
	col int
}

// Render draws the graph. Commits must be in layout order, newest first.
func Render(commits []render.Commit, opts Options) []byte {
	maxCol := render.MaxColumn(commits)
	if maxCol < 0 {
		return nil
	}
	width := (maxCol + 1) * cellWidth

	var buf bytes.Buffer
	for i, c := range commits {
		writeCells(&buf, commitCells(c, width), opts)
		buf.WriteString(" ")
		buf.WriteString(styled(opts, hashStyle, c.ShortHash))
		if decor := formatRefs(c.Refs, opts); decor != "" {
			buf.WriteString(" ")
			buf.WriteString(decor)
		}
		if c.Message != "" {
			buf.WriteString(" ")
			buf.WriteString(c.Message)
		}
		buf.WriteByte('\n')

		if i < len(commits)-1 {
			cells := connectorCells(c, width)
			if !blank(cells) {
				writeCells(&buf, cells, opts)
				buf.WriteByte('\n')
			}
		}
	}
	return buf.Bytes()
}

// commitCells builds the marker line: the node at the commit's column and
// a vertical bar for every lane passing by.
func commitCells(c render.Commit, width int) []cell {
	cells := emptyCells(width)
	for _, l := range c.Lines {
		if l.Kind == graph.SegmentPassThrough {
			put(cells, l.FromColumn*cellWidth, '│', l.FromColumn)
		}
	}
	marker := markerCommit
	if c.IsTip {
		marker = markerTip
	}
	put(cells, c.Column*cellWidth, marker, c.Column)
	return cells
}

// connectorCells builds the line between this row and the next: straight
// continuations and the bends of edges changing columns.
func connectorCells(c render.Commit, width int) []cell {
	cells := emptyCells(width)
	for _, l := range c.Lines {
		switch l.Kind {
		case graph.SegmentPassThrough:
			put(cells, l.FromColumn*cellWidth, '│', l.FromColumn)
		case graph.SegmentToParent:
			drawEdge(cells, l)
		}
	}
	return cells
}

// drawEdge draws one downward edge. The color follows the target lane, so
// a merge edge picks up the color of the branch it comes from.
func drawEdge(cells []cell, l graph.LineSegment) {
	from, to := l.FromColumn*cellWidth, l.ToColumn*cellWidth
	switch {
	case from == to:
		put(cells, from, '│', l.ToColumn)
	case to > from:
		put(cells, from, '╰', l.ToColumn)
		for x := from + 1; x < to; x++ {
			put(cells, x, '─', l.ToColumn)
		}
		put(cells, to, '╮', l.ToColumn)
	default:
		put(cells, from, '╯', l.ToColumn)
		for x := to + 1; x < from; x++ {
			put(cells, x, '─', l.ToColumn)
		}
		put(cells, to, '╭', l.ToColumn)
	}
}

// put writes a rune, resolving collisions between overlapping edges.
func put(cells []cell, x int, r rune, col int) {
	if x < 0 || x >= len(cells) {
		return
	}
	if merged, ok := junction(cells[x].r, r); ok {
		r = merged
	}
	cells[x] = cell{r: r, col: col}
}

// junction combines two edge runes meeting in one cell: crossings become
// ┼, a vertical sharing a cell with a corner becomes a tee.
func junction(prev, next rune) (rune, bool) {
	if prev == next {
		return prev, true
	}
	pair := string(prev) + string(next)
	switch pair {
	case "│─", "─│":
		return '┼', true
	case "│╰", "╰│", "│╭", "╭│":
		return '├', true
	case "│╯", "╯│", "│╮", "╮│":
		return '┤', true
	case "╰╯", "╯╰":
		return '┴', true
	case "╭╮", "╮╭":
		return '┬', true
	}
	return 0, false
}

func emptyCells(width int) []cell {
	cells := make([]cell, width)
	for i := range cells {
		cells[i] = cell{r: ' ', col: -1}
	}
	return cells
}

func blank(cells []cell) bool {
	for _, c := range cells {
		if c.r != ' ' {
			return false
		}
	}
	return true
}

func writeCells(buf *bytes.Buffer, cells []cell, opts Options) {
	if !opts.Color {
		for _, c := range cells {
			buf.WriteRune(c.r)
		}
		return
	}
	palette := opts.Palette
	for _, c := range cells {
		if c.col < 0 || c.r == ' ' {
			buf.WriteRune(c.r)
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Color(c.col)))
		buf.WriteString(style.Render(string(c.r)))
	}
}

// formatRefs renders decorations like "(HEAD -> main, tag: v1.0, origin/main)".
func formatRefs(refs []gitrepo.RefInfo, opts Options) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref.IsHead:
			parts = append(parts, styled(opts, headStyle, "HEAD -> "+ref.Name))
		case ref.Type == gitrepo.RefTag:
			parts = append(parts, styled(opts, refStyle, "tag: "+ref.Name))
		default:
			parts = append(parts, styled(opts, refStyle, ref.Name))
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func styled(opts Options, style lipgloss.Style, s string) string {
	if !opts.Color {
		return s
	}
	return style.Render(s)
}
