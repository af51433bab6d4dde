package viewport

import (
	"math"

	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
)

// PlacedColumn is a column group offset under a transform.
type PlacedColumn struct {
	Index int
	X     float64
}

// Frame is a grid projected through a transform. Only visible columns are
// placed.
type Frame struct {
	Transform  Transform
	X          scale.Linear
	CellWidth  float64
	CellHeight float64
	First      int
	Last       int
	Columns    []PlacedColumn
	Overlays   []layout.Overlay
	Unfolds    []layout.Unfold
}

// Apply projects g through t. Column offsets, cell width and overlays all
// come from the same rescaled column scale. Cell height is unchanged.
func Apply(t Transform, g layout.Grid) Frame {
	xs := t.RescaleX(g.X)
	first, last := VisibleRange(xs, g.Columns, g.Frame.Width)
	f := Frame{
		Transform:  t,
		X:          xs,
		CellWidth:  g.CellWidth * t.K,
		CellHeight: g.CellHeight,
		First:      first,
		Last:       last,
		Columns:    make([]PlacedColumn, 0, last-first),
		Overlays:   make([]layout.Overlay, len(g.Overlays)),
	}
	for i := first; i < last; i++ {
		f.Columns = append(f.Columns, PlacedColumn{Index: i, X: xs.At(float64(i))})
	}
	seq := g.Sequence()
	for i, o := range g.Overlays {
		r := seq.Clusters[i]
		x0, x1 := xs.At(float64(r.Start)), xs.At(float64(r.End))
		o.X, o.W = x0, math.Abs(x1-x0)
		f.Overlays[i] = o
	}
	step := xs.At(1) - xs.At(0)
	for _, u := range g.Unfolds {
		u.X = xs.At(float64(u.Index)) - step
		u.W = 3 * f.CellWidth
		f.Unfolds = append(f.Unfolds, u)
	}
	return f
}

// VisibleRange returns the half-open window of column indices in [0, n)
// whose extent intersects [0, width] under the column scale xs.
func VisibleRange(xs scale.Linear, n int, width float64) (first, last int) {
	if n <= 0 {
		return 0, 0
	}
	lo, hi := xs.Invert(0), xs.Invert(width)
	if lo > hi {
		lo, hi = hi, lo
	}
	first = max(0, int(math.Floor(lo)))
	last = min(n, int(math.Ceil(hi)))
	if last < first {
		last = first
	}
	return first, last
}

// ColumnAt returns the column under viewport x.
func (f Frame) ColumnAt(x float64) (int, bool) {
	i := int(math.Floor(f.X.Invert(x)))
	if i < f.First || i >= f.Last {
		return 0, false
	}
	return i, true
}

// UnfoldAt returns the unfold control under viewport x.
func (f Frame) UnfoldAt(x float64) (layout.Unfold, bool) {
	for _, u := range f.Unfolds {
		if x >= u.X && x < u.Right() {
			return u, true
		}
	}
	return layout.Unfold{}, false
}
