package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT generation.
type Options struct {
	// Labels shows node names next to the ids.
	Labels bool
}

const (
	colorNode      = "#9ecae1"
	colorHighlight = "#fd8d3c"
	colorCenter    = "#e6550d"
	colorEdge      = "#bdbdbd"
	colorEdgeHi    = "#636363"
)

// ToDOT converts g to undirected Graphviz DOT. Center and highlighted nodes
// and links are colored.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.3, fontsize=8, penwidth=0.5];\n")
	buf.WriteString("  edge [penwidth=0.6];\n")
	if g.Time != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", g.Time)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}
	buf.WriteString("\n")
	for _, l := range g.Links {
		color := colorEdge
		if l.Highlight {
			color = colorEdgeHi
		}
		fmt.Fprintf(&buf, "  %d -- %d [color=%q];\n", l.Source, l.Target, color)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node, opts Options) []string {
	label := strconv.Itoa(n.ID)
	if opts.Labels && n.Name != "" {
		label += "\n" + n.Name
	}
	fill := colorNode
	switch {
	case n.Center:
		fill = colorCenter
	case n.Highlight:
		fill = colorHighlight
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", fill),
		fmt.Sprintf("id=\"node-%d\"", n.ID),
	}
}

// RenderSVG lays out a DOT graph with neato and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the diagram scales to its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Zoom wraps the content of a rendered SVG in a transform group.
func Zoom(svg []byte, k, x, y float64) []byte {
	loc := svgTagRe.FindIndex(svg)
	end := bytes.LastIndex(svg, []byte("</svg>"))
	if loc == nil || end < loc[1] {
		return svg
	}
	var buf bytes.Buffer
	buf.Grow(len(svg) + 64)
	buf.Write(svg[:loc[1]])
	fmt.Fprintf(&buf, `<g transform="translate(%.2f,%.2f) scale(%.4f)">`, x, y, k)
	buf.Write(svg[loc[1]:end])
	buf.WriteString("</g>")
	buf.Write(svg[end:])
	return buf.Bytes()
}
