// Package layout computes the geometry of a pixel-matrix view.
//
// [Compute] takes an abstraction sequence and a frame size and returns a
// [Grid]: integer cell sizes, the linear column and row scales, one
// [Overlay] per display cluster and one [Unfold] control per folded cluster.
// Cells are produced on demand per column with [Grid.Cells] so that a zoomed
// view only pays for the columns it shows.
//
// Degenerate inputs never fail: an empty matrix or a frame smaller than the
// matrix clamps cell sizes to one unit.
package layout
