// Package render groups the renderers of motifscope.
//
// # Overview
//
// Two kinds of views are drawn:
//
//   - [pixel]: pixel matrices, one column per network (motif view) or per
//     node (graphlet panel), colored by score.
//   - [nodelink]: node-link diagrams of a single network, laid out by
//     Graphviz.
//
// # Pixel Matrices
//
// The pixel renderer works in three stages that mirror its subpackages:
//
//	seq := abstraction.Compute(m, clusters, flags)
//	grid := layout.Compute(seq, layout.Frame{Width: 1200, Height: 800}, m.Rows(), layout.WithColors(cs))
//	svg := sink.RenderSVG(grid, sink.WithViewport(t))
//	png, err := sink.RenderPNG(grid, sink.WithScale(2))
//
// Zoom and pan are applied by the sinks from a viewport transform, so the
// grid is only rebuilt when the data or the folding changes.
//
// # Node-Link Diagrams
//
// The detail view converts a network to DOT and renders it in-process:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [pixel]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/pixel
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/nodelink
package render
