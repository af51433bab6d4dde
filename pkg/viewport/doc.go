// Package viewport implements zoom and pan for the pixel and node-link views.
//
// A [Transform] is the affine map x' = K*x + X, y' = K*y + Y. A [Zoomer]
// owns the transform of one view instance and keeps it inside its scale
// extent and translate extent after every operation, so content can never be
// panned out of view.
//
// Rescaled scales are always derived from the immutable base scale of the
// grid ([Transform.RescaleX]); a transform is never applied to an already
// rescaled scale. [Apply] projects a [layout.Grid] through a transform and
// emits geometry for the visible columns only.
package viewport
