// Package nodelink renders one network of the dataset as a node-link
// diagram.
//
// # Overview
//
// The detail view shows the network behind a motif column, optionally
// focused on one node. A [Graph] is the node-link document exchanged with
// the provider (the "node_link_data" JSON shape). [Select] narrows a full
// network down to what the detail view shows:
//
//   - with a focus node, every node within [HopCutoff] hops of it is marked
//     highlighted and the focus node is marked center;
//   - networks with more than [PageThreshold] nodes are split into
//     modularity communities, largest first, and only the requested page is
//     kept. A focus node overrides the page with its own community.
//
// # Rendering
//
// [ToDOT] converts a graph to undirected Graphviz DOT and [RenderSVG] lays it
// out in-process with neato:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// Graph algorithms use [gonum.org/v1/gonum/graph]. Layout and SVG output use
// [github.com/goccy/go-graphviz].
package nodelink
