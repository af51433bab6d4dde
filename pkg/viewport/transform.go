package viewport

import (
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
)

// Transform is a uniform scale followed by a translation.
type Transform struct {
	K float64
	X float64
	Y float64
}

// Identity is the unzoomed transform.
var Identity = Transform{K: 1}

// Point is a position in viewport coordinates.
type Point struct {
	X, Y float64
}

// ApplyX maps a content x into the viewport.
func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }

// ApplyY maps a content y into the viewport.
func (t Transform) ApplyY(y float64) float64 { return y*t.K + t.Y }

// InvertX maps a viewport x back into content space.
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }

// InvertY maps a viewport y back into content space.
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Invert maps a viewport point back into content space.
func (t Transform) Invert(p Point) Point { return Point{X: t.InvertX(p.X), Y: t.InvertY(p.Y)} }

// translate shifts by (dx, dy) content units.
func (t Transform) translate(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + t.K*dx, Y: t.Y + t.K*dy}
}

// RescaleX returns base with its domain replaced so that it maps content
// positions straight to zoomed viewport positions.
func (t Transform) RescaleX(base scale.Linear) scale.Linear {
	return base.WithDomain(base.Invert(t.InvertX(base.R0)), base.Invert(t.InvertX(base.R1)))
}

// RescaleY is [Transform.RescaleX] for the vertical axis.
func (t Transform) RescaleY(base scale.Linear) scale.Linear {
	return base.WithDomain(base.Invert(t.InvertY(base.R0)), base.Invert(t.InvertY(base.R1)))
}
