package layout

import (
	"math"

	"github.com/matzehuels/motifscope/pkg/abstraction"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
)

// Frame is the drawing area of one view.
type Frame struct {
	Width  float64
	Height float64
}

// Overlay is the decorative outline of one display cluster. It never
// receives pointer events.
type Overlay struct {
	Rect
	Source     int
	Folded     bool
	Decorative bool
}

// Unfold is the control that toggles a folded cluster.
type Unfold struct {
	Rect
	Index  int
	Source int
}

// Cell is one colored pixel.
type Cell struct {
	Rect
	Row   int
	Value float64
	Color string
}

// ColumnGroup is one display column.
type ColumnGroup struct {
	Index       int
	ID          int
	X           float64
	Placeholder bool
}

// Grid is the computed geometry of a view.
type Grid struct {
	Frame      Frame
	Columns    int
	Rows       int
	CellWidth  float64
	CellHeight float64
	X          scale.Linear
	Y          scale.Linear
	Overlays   []Overlay
	Unfolds    []Unfold

	seq    *abstraction.Sequence
	colors *scale.ColorScale
}

// Option configures [Compute].
type Option func(*Grid)

// WithColors sets the cell color scale. The default is [scale.Diverging].
func WithColors(cs *scale.ColorScale) Option {
	return func(g *Grid) { g.colors = cs }
}

// Compute lays out seq in frame with rows cells per column.
func Compute(seq *abstraction.Sequence, frame Frame, rows int, opts ...Option) Grid {
	n := seq.Width()
	g := Grid{
		Frame:      frame,
		Columns:    n,
		Rows:       rows,
		CellWidth:  cellSize(frame.Width, n),
		CellHeight: cellSize(frame.Height, rows),
		X:          scale.NewLinear(0, float64(n), 0, frame.Width),
		Y:          scale.NewLinear(0, float64(rows), 0, frame.Height),
		seq:        seq,
	}
	for _, opt := range opts {
		opt(&g)
	}
	if g.colors == nil {
		g.colors = scale.Diverging()
	}

	g.Overlays = make([]Overlay, len(seq.Clusters))
	for i, r := range seq.Clusters {
		g.Overlays[i] = Overlay{
			Rect:       g.span(r.Start, r.End),
			Source:     r.Source,
			Folded:     r.Folded,
			Decorative: true,
		}
	}
	for _, a := range abstraction.Affordances(seq) {
		g.Unfolds = append(g.Unfolds, Unfold{
			Rect:   Rect{X: g.X.At(float64(a.Index)) - g.X.At(1), W: 3 * g.CellWidth, H: frame.Height},
			Index:  a.Index,
			Source: a.Source,
		})
	}
	return g
}

// cellSize is floor(extent / count), clamped to at least one unit.
func cellSize(extent float64, count int) float64 {
	if count <= 0 || extent <= 0 || math.IsNaN(extent) {
		return 1
	}
	return max(1, math.Floor(extent/float64(count)))
}

func (g Grid) span(start, end int) Rect {
	x0, x1 := g.X.At(float64(start)), g.X.At(float64(end))
	return Rect{X: x0, W: math.Abs(x1 - x0), H: g.Frame.Height}
}

// Sequence returns the sequence the grid was computed from.
func (g Grid) Sequence() *abstraction.Sequence { return g.seq }

// Colors returns the cell color scale.
func (g Grid) Colors() *scale.ColorScale { return g.colors }

// Column returns display column i.
func (g Grid) Column(i int) ColumnGroup {
	id := g.seq.Ordering[i]
	_, ok := g.seq.Resolve(i)
	return ColumnGroup{Index: i, ID: id, X: g.X.At(float64(i)), Placeholder: !ok}
}

// Cells returns the cells of display column i. Placeholders have none.
func (g Grid) Cells(i int) []Cell {
	col := g.seq.Columns[i]
	if len(col.Scores) == 0 {
		return nil
	}
	x := g.X.At(float64(i))
	cells := make([]Cell, len(col.Scores))
	for j, v := range col.Scores {
		cells[j] = Cell{
			Rect:  Rect{X: x, Y: g.Y.At(float64(j)), W: g.CellWidth, H: g.CellHeight},
			Row:   j,
			Value: v,
			Color: g.colors.Hex(v),
		}
	}
	return cells
}

// ColumnAt returns the display column under frame x, using the unzoomed
// column scale.
func (g Grid) ColumnAt(x float64) (int, bool) {
	return g.ColumnAtScale(g.X, x)
}

// ColumnAtScale returns the display column under x for an arbitrary (for
// example rescaled) column scale.
func (g Grid) ColumnAtScale(s scale.Linear, x float64) (int, bool) {
	if g.Columns == 0 {
		return 0, false
	}
	i := int(math.Floor(s.Invert(x)))
	if i < 0 || i >= g.Columns {
		return 0, false
	}
	return i, true
}

// UnfoldAt returns the unfold control under frame x, if any.
func (g Grid) UnfoldAt(x float64) (Unfold, bool) {
	for _, u := range g.Unfolds {
		if x >= u.X && x < u.Right() {
			return u, true
		}
	}
	return Unfold{}, false
}
