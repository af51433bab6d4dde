// Package sink writes a pixel-matrix [layout.Grid] to an output format.
//
// [RenderSVG] produces an interactive SVG: one group per visible column
// carrying its item id, decorative cluster outlines that never take pointer
// events, and unfold controls. [RenderPNG] rasterizes the same geometry and
// [RenderJSON] dumps it for external renderers.
//
// All sinks accept a viewport transform; only columns visible under the
// transform are emitted.
package sink
