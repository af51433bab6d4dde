// Package pkg provides the core libraries of motifscope.
//
// # Overview
//
// motifscope shows motif significance profiles and graphlet degree vectors of
// a network time series as pixel matrices. Each network is one column of the
// motif view; each node of a network is one column of its graphlet panel.
// Clusters of similar networks that would waste horizontal space are folded
// into a fixed-width summary, and hovering or clicking a column links the
// motif view, the graphlet panels and a node-link detail view.
//
// # Architecture
//
// The data flow through motifscope:
//
//	Provider (HTTP API or local bundle)
//	         ↓
//	    [matrix] package (columns, clusters, payload decoding)
//	         ↓
//	    [abstraction] package (folding into display columns)
//	         ↓
//	    [render/pixel] packages (scale, layout, sinks)
//	         ↓
//	    SVG/PNG/JSON output, or an interactive [view] session
//
// # Main Packages
//
// ## Domain
//
// [matrix] - Pixel matrices, cluster partitions and the provider payloads
// they are decoded from.
//
// [abstraction] - The abstraction engine. Clusters longer than the fold
// threshold keep their first and last networks and replace the middle with
// placeholder columns; fold flags expand individual clusters.
//
// [viewport] - Zoom and pan transforms, bounded per view kind, and the
// mapping between screen coordinates and display columns.
//
// [selection] - The linked selection state shared by all views and the
// coordinator that turns hover dwell and clicks into detail and panel
// requests.
//
// [view] - Interactive pixel views and sessions that combine the packages
// above behind a single event loop.
//
// ## Rendering
//
// [render/pixel] - Pixel matrix rendering: [render/pixel/scale] for axes and
// colors, [render/pixel/layout] for cell geometry and
// [render/pixel/sink] for SVG, PNG and JSON output.
//
// [render/nodelink] - Node-link diagrams of single networks, laid out by
// Graphviz, with neighbourhood highlighting and community paging.
//
// ## Infrastructure
//
// [provider] - Data sources: the HTTP provider API with retries and caching,
// and local JSON bundles with file watching.
//
// [pipeline] - Stateless rendering pipeline (fetch → abstract → layout →
// render) used by the CLI and the HTTP server.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [errors] - Structured errors with codes and user-facing messages.
//
// [observability] - Hooks for fetch, layout, render, dwell, cache and HTTP
// events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/abstraction/...        # Specific package
//	go test -run Property ./pkg/...      # Property-based tests only
//
// [matrix]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/matrix
// [abstraction]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/abstraction
// [viewport]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/viewport
// [selection]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/selection
// [view]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/view
// [render/pixel]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/pixel
// [render/pixel/scale]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/pixel/scale
// [render/pixel/layout]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/pixel/layout
// [render/pixel/sink]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/pixel/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/render/nodelink
// [provider]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/provider
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/motifscope/pkg/buildinfo
package pkg
