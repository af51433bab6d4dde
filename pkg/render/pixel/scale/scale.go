// Package scale provides the linear position scales and piecewise color
// scales used by the pixel views.
package scale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/motifscope/pkg/errors"
)

// Linear maps the domain [D0, D1] onto the range [R0, R1].
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear returns a linear scale.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// At maps x from the domain into the range. A collapsed domain maps every
// input to R0.
func (l Linear) At(x float64) float64 {
	if l.D1 == l.D0 {
		return l.R0
	}
	return l.R0 + (x-l.D0)/(l.D1-l.D0)*(l.R1-l.R0)
}

// Invert maps y from the range back into the domain.
func (l Linear) Invert(y float64) float64 {
	if l.R1 == l.R0 {
		return l.D0
	}
	return l.D0 + (y-l.R0)/(l.R1-l.R0)*(l.D1-l.D0)
}

// WithDomain returns a copy with the domain replaced.
func (l Linear) WithDomain(d0, d1 float64) Linear {
	l.D0, l.D1 = d0, d1
	return l
}

// ColorScale interpolates piecewise-linearly in RGB between color stops.
// Inputs outside the domain clamp to the end colors.
type ColorScale struct {
	domain  []float64
	colors  []colorful.Color
	unknown colorful.Color
}

// NewColorScale builds a scale from ascending domain stops and one hex color
// per stop. NaN inputs map to the first color.
func NewColorScale(domain []float64, hexes []string) (*ColorScale, error) {
	if len(domain) < 2 || len(domain) != len(hexes) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"color scale needs matching stops, got %d domain and %d colors", len(domain), len(hexes))
	}
	cs := &ColorScale{domain: domain, colors: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		if i > 0 && domain[i] <= domain[i-1] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "color domain not ascending at %d", i)
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "color stop %d", i)
		}
		cs.colors[i] = c
	}
	cs.unknown = cs.colors[0]
	return cs, nil
}

// MustColorScale is like [NewColorScale] but panics on error. Use it only
// with constant stops.
func MustColorScale(domain []float64, hexes []string) *ColorScale {
	cs, err := NewColorScale(domain, hexes)
	if err != nil {
		panic(err)
	}
	return cs
}

// Diverging is the motif significance scale: -1 red, 0 near-white, 1 blue.
func Diverging() *ColorScale {
	cs := MustColorScale([]float64{-1, 0, 1}, []string{"#67001f", "#f7f7f7", "#053061"})
	cs.unknown = cs.colors[1]
	return cs
}

// Sequential is the graphlet degree scale: white for zero, darkening with
// each order of magnitude.
func Sequential() *ColorScale {
	return MustColorScale(
		[]float64{0, 10, 100, 1000, 10000},
		[]string{"#ffffff", "#bdbdbd", "#525252", "#252525", "#000000"},
	)
}

// At returns the color for v.
func (c *ColorScale) At(v float64) colorful.Color {
	if math.IsNaN(v) {
		return c.unknown
	}
	last := len(c.domain) - 1
	if v <= c.domain[0] {
		return c.colors[0]
	}
	if v >= c.domain[last] {
		return c.colors[last]
	}
	i := 1
	for v > c.domain[i] {
		i++
	}
	t := (v - c.domain[i-1]) / (c.domain[i] - c.domain[i-1])
	return c.colors[i-1].BlendRgb(c.colors[i], t).Clamped()
}

// Hex returns the color for v as "#rrggbb".
func (c *ColorScale) Hex(v float64) string { return c.At(v).Hex() }

// Domain returns the stop positions.
func (c *ColorScale) Domain() []float64 { return c.domain }
