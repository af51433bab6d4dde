package viewport

import (
	"math"
)

// Box is an axis-aligned box given by its corners.
type Box struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Zoomer holds the transform of one view and its constraints. It is not
// safe for concurrent use.
type Zoomer struct {
	MinK, MaxK float64
	// Extent is the viewport box.
	Extent Box
	// TranslateExtent is the content box that must stay in view.
	TranslateExtent Box
	// Horizontal disables vertical zoom offset and panning.
	Horizontal bool

	t Transform
}

// PixelMatrix returns the zoomer of a pixel-matrix view: k in [1, 10],
// horizontal only, content box equal to the viewport.
func PixelMatrix(width, height float64) *Zoomer {
	box := Box{X1: width, Y1: height}
	return &Zoomer{MinK: 1, MaxK: 10, Extent: box, TranslateExtent: box, Horizontal: true, t: Identity}
}

// NodeLink returns the zoomer of a node-link view: k in [1, 20], free 2D.
func NodeLink(width, height float64) *Zoomer {
	box := Box{X1: width, Y1: height}
	return &Zoomer{MinK: 1, MaxK: 20, Extent: box, TranslateExtent: box, t: Identity}
}

// Transform returns the current transform.
func (z *Zoomer) Transform() Transform { return z.t }

// Set replaces the transform, constraining it first.
func (z *Zoomer) Set(t Transform) Transform {
	if t.K == 0 || math.IsNaN(t.K) {
		t.K = 1
	}
	t.K = z.clampK(t.K)
	z.t = z.constrain(t)
	return z.t
}

// Reset returns to the identity transform.
func (z *Zoomer) Reset() Transform { return z.Set(Identity) }

// ZoomTo sets the scale to k, keeping the content under anchor fixed.
func (z *Zoomer) ZoomTo(k float64, anchor Point) Transform {
	if math.IsNaN(k) || k <= 0 {
		return z.t
	}
	k = z.clampK(k)
	p := z.t.Invert(anchor)
	return z.Set(Transform{K: k, X: anchor.X - p.X*k, Y: anchor.Y - p.Y*k})
}

// ZoomBy multiplies the scale by factor around anchor.
func (z *Zoomer) ZoomBy(factor float64, anchor Point) Transform {
	return z.ZoomTo(z.t.K*factor, anchor)
}

// Wheel zooms by a mouse wheel delta, using the same sensitivity as a
// browser wheel event in pixel mode.
func (z *Zoomer) Wheel(deltaY float64, anchor Point) Transform {
	return z.ZoomBy(math.Pow(2, -deltaY*0.002), anchor)
}

// PanBy translates by (dx, dy) viewport units.
func (z *Zoomer) PanBy(dx, dy float64) Transform {
	t := z.t
	t.X += dx
	t.Y += dy
	return z.Set(t)
}

func (z *Zoomer) clampK(k float64) float64 {
	return max(z.MinK, min(z.MaxK, k))
}

// constrain keeps the translate extent covering the viewport where possible,
// and centers it where it is smaller.
func (z *Zoomer) constrain(t Transform) Transform {
	e, te := z.Extent, z.TranslateExtent
	dx0 := t.InvertX(e.X0) - te.X0
	dx1 := t.InvertX(e.X1) - te.X1
	dy0 := t.InvertY(e.Y0) - te.Y0
	dy1 := t.InvertY(e.Y1) - te.Y1
	t = t.translate(shift(dx0, dx1), shift(dy0, dy1))
	if z.Horizontal {
		t.Y = 0
	}
	return t
}

func shift(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if v := min(0, d0); v != 0 {
		return v
	}
	return max(0, d1)
}
