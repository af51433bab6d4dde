// Package view wires the abstraction engine, the layout, the viewport and
// the selection coordinator into interactive pixel views.
//
// A [PixelView] owns one matrix: its fold flags, its display sequence, its
// grid and its zoom transform. Pointer events are given in viewport
// coordinates and resolved against the zoomed frame, so hit testing always
// agrees with what is drawn.
//
// A [Session] is the shared context of one user: the motif view, the open
// graphlet panels, the selection state and the node-link detail view. All
// Session and PixelView methods must be called from the owning event loop;
// network fetches started by the detail view report back through the
// scheduler's Post function.
package view
