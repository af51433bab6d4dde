// Package pixel renders pixel-matrix views.
//
// Rendering happens in three stages, each in its own subpackage:
//
//   - [scale] maps column indices to pixels and scores to colors.
//   - [layout] turns an abstraction sequence into a [layout.Grid]: cell
//     sizes, column offsets, cluster overlays and unfold controls.
//   - [sink] writes a grid as SVG, PNG or JSON.
//
// The grid is pure geometry and is recomputed on every redraw. Zoom and pan
// never touch the grid; they are applied by package viewport on top of it.
package pixel
