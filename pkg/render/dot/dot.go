// Package dot renders a commit graph to Graphviz DOT and SVG.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/revlane/revlane/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// Palette maps columns to colors. Nil uses render.DefaultPalette.
	Palette render.Palette

	// Detailed includes author and timestamp in node labels.
	Detailed bool
}

// ToDOT converts a laid-out commit graph to Graphviz DOT. Nodes are
// colored by lane column and edges by the lane they descend into.
// Parents outside the rendered window appear as small grey points.
func ToDOT(commits []render.Commit, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph history {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"monospace\", fontsize=11, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	inWindow := make(map[string]int, len(commits))
	for _, c := range commits {
		inWindow[c.Hash] = c.Column
	}

	for _, c := range commits {
		color := opts.Palette.Color(c.Column)
		label := nodeLabel(c, opts.Detailed)
		shape := ""
		if c.IsTip {
			shape = ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, color=%q, fillcolor=%q%s];\n",
			c.Hash, label, color, color+"33", shape)
	}

	buf.WriteString("\n")
	elided := make(map[string]bool)
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if _, ok := inWindow[p]; !ok && !elided[p] {
				fmt.Fprintf(&buf, "  %q [shape=point, color=grey, label=\"\"];\n", p)
				elided[p] = true
			}
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", c.Hash, p, edgeColor(c, p, inWindow, opts.Palette))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(c render.Commit, detailed bool) string {
	parts := []string{c.ShortHash}
	for _, ref := range c.Refs {
		parts[0] += " (" + ref.Name + ")"
		break
	}
	if c.Message != "" {
		parts = append(parts, truncate(c.Message, 48))
	}
	if detailed {
		parts = append(parts, c.AuthorName)
	}
	return strings.Join(parts, "\n")
}

// edgeColor follows the parent's lane when the parent is in the window,
// so merge edges take the color of the branch being merged.
func edgeColor(c render.Commit, parent string, inWindow map[string]int, palette render.Palette) string {
	if col, ok := inWindow[parent]; ok {
		return palette.Color(col)
	}
	return palette.Color(c.Column)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderSVG renders DOT to SVG via Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
