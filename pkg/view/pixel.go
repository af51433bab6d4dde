package view

import (
	"github.com/matzehuels/motifscope/pkg/abstraction"
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
	"github.com/matzehuels/motifscope/pkg/render/pixel/sink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

// Format is an output format of [PixelView.Render].
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// PixelView is one pixel-matrix view.
type PixelView struct {
	kind     selection.ViewKind
	coord    *selection.Coordinator
	state    *selection.State
	frame    layout.Frame
	colors   *scale.ColorScale
	abstract bool

	payload matrix.Payload
	flags   *abstraction.Flags
	seq     *abstraction.Sequence
	grid    layout.Grid
	zoom    *viewport.Zoomer

	hovered int
	redraws int
}

// PixelOption configures a PixelView.
type PixelOption func(*PixelView)

// WithAbstraction turns cluster folding on or off. It is on by default.
func WithAbstraction(on bool) PixelOption { return func(v *PixelView) { v.abstract = on } }

// WithColors sets the cell color scale.
func WithColors(cs *scale.ColorScale) PixelOption { return func(v *PixelView) { v.colors = cs } }

// NewPixelView returns an empty view of the given kind. coord receives the
// pointer protocol; state supplies the column selection drawn by Render.
func NewPixelView(kind selection.ViewKind, frame layout.Frame, coord *selection.Coordinator, state *selection.State, opts ...PixelOption) *PixelView {
	v := &PixelView{
		kind:     kind,
		coord:    coord,
		state:    state,
		frame:    frame,
		abstract: true,
		flags:    abstraction.NewFlags(),
		zoom:     viewport.PixelMatrix(frame.Width, frame.Height),
		hovered:  -1,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.recompute()
	return v
}

// Kind returns the view kind.
func (v *PixelView) Kind() selection.ViewKind { return v.kind }

// Coordinator returns the selection coordinator of the view.
func (v *PixelView) Coordinator() *selection.Coordinator { return v.coord }

// Payload returns the rendered payload, or nil.
func (v *PixelView) Payload() matrix.Payload { return v.payload }

// Sequence returns the current display sequence.
func (v *PixelView) Sequence() *abstraction.Sequence { return v.seq }

// Grid returns the current unzoomed layout.
func (v *PixelView) Grid() layout.Grid { return v.grid }

// Flags returns the fold flags.
func (v *PixelView) Flags() *abstraction.Flags { return v.flags }

// Abstract reports whether folding is on.
func (v *PixelView) Abstract() bool { return v.abstract }

// Redraws counts full re-renders. It is meant for tests and status lines.
func (v *PixelView) Redraws() int { return v.redraws }

// SetPayload replaces the matrix. Fold flags and zoom start over and any
// hover in progress is dropped.
func (v *PixelView) SetPayload(p matrix.Payload) {
	v.Leave()
	v.payload = p
	v.flags.Reset()
	v.zoom.Reset()
	v.recompute()
}

// SetAbstraction turns folding on or off and re-renders.
func (v *PixelView) SetAbstraction(on bool) {
	if v.abstract == on {
		return
	}
	v.abstract = on
	v.Leave()
	v.recompute()
}

// Toggle flips the fold flag of a source cluster and re-renders. Unknown
// clusters are ignored.
func (v *PixelView) Toggle(source int) bool {
	if !v.abstract || !v.flags.Toggle(source) {
		return false
	}
	v.Leave()
	v.recompute()
	return true
}

// Unfold applies a list of source clusters to unfold, as given on the
// command line. Unknown clusters are an error.
func (v *PixelView) Unfold(sources ...int) error {
	for _, s := range sources {
		if !v.flags.Known(s) {
			return errors.New(errors.ErrCodeInvalidInput, "cluster %d is not foldable", s)
		}
		v.flags.Set(s, false)
	}
	if len(sources) > 0 {
		v.Leave()
		v.recompute()
	}
	return nil
}

// Resize changes the frame. The transform is re-constrained to the new
// extent.
func (v *PixelView) Resize(frame layout.Frame) {
	if frame == v.frame {
		return
	}
	v.Leave()
	t := v.zoom.Transform()
	v.frame = frame
	v.zoom = viewport.PixelMatrix(frame.Width, frame.Height)
	v.zoom.Set(t)
	v.recompute()
}

func (v *PixelView) recompute() {
	var m *matrix.Matrix
	var clusters []matrix.Cluster
	rows := 0
	if v.payload != nil {
		b := v.payload.Data()
		m, clusters, rows = b.Matrix, b.Clusters, b.Matrix.Rows()
	}
	if m == nil {
		m, _ = matrix.New(nil, nil)
	}
	if v.abstract {
		v.seq = abstraction.Compute(m, clusters, v.flags)
	} else {
		v.seq = abstraction.Identity(m, clusters)
	}
	var opts []layout.Option
	if v.colors != nil {
		opts = append(opts, layout.WithColors(v.colors))
	}
	v.grid = layout.Compute(v.seq, v.frame, rows, opts...)
	v.redraws++
}

// Transform returns the zoom transform.
func (v *PixelView) Transform() viewport.Transform { return v.zoom.Transform() }

// Frame returns the grid projected through the current transform.
func (v *PixelView) Frame() viewport.Frame { return viewport.Apply(v.zoom.Transform(), v.grid) }

// Wheel zooms around viewport x.
func (v *PixelView) Wheel(deltaY, x float64) viewport.Transform {
	return v.zoom.Wheel(deltaY, viewport.Point{X: x})
}

// ZoomBy multiplies the scale around viewport x.
func (v *PixelView) ZoomBy(factor, x float64) viewport.Transform {
	return v.zoom.ZoomBy(factor, viewport.Point{X: x})
}

// PanBy pans horizontally.
func (v *PixelView) PanBy(dx float64) viewport.Transform { return v.zoom.PanBy(dx, 0) }

// SetTransform replaces the transform, constrained.
func (v *PixelView) SetTransform(t viewport.Transform) viewport.Transform { return v.zoom.Set(t) }

// ResetZoom returns to the identity transform.
func (v *PixelView) ResetZoom() viewport.Transform { return v.zoom.Reset() }

// Target returns the selection target of display column i.
func (v *PixelView) Target(i int) selection.Target {
	col := v.grid.Column(i)
	return selection.Target{Index: i, ItemID: col.ID, Placeholder: col.Placeholder}
}

// ColumnAt returns the display column under viewport x.
func (v *PixelView) ColumnAt(x float64) (int, bool) { return v.Frame().ColumnAt(x) }

// Hover handles the pointer at viewport x. Moving within a column does not
// re-arm the dwell timer; leaving the grid ends the hover.
func (v *PixelView) Hover(x float64) {
	i, ok := v.ColumnAt(x)
	if !ok {
		v.Leave()
		return
	}
	v.HoverColumn(i)
}

// HoverColumn handles the pointer entering display column i.
func (v *PixelView) HoverColumn(i int) {
	if i < 0 || i >= v.grid.Columns {
		v.Leave()
		return
	}
	if i == v.hovered {
		return
	}
	if v.hovered >= 0 {
		v.coord.Leave()
	}
	v.hovered = i
	v.coord.Enter(v.Target(i))
}

// Leave handles the pointer leaving the view.
func (v *PixelView) Leave() {
	if v.hovered < 0 {
		return
	}
	v.hovered = -1
	v.coord.Leave()
}

// Hovered returns the hovered display column.
func (v *PixelView) Hovered() (int, bool) { return v.hovered, v.hovered >= 0 }

// Click handles a click at viewport x. An unfold control takes precedence
// over the column beneath it.
func (v *PixelView) Click(x float64) bool {
	if u, ok := v.Frame().UnfoldAt(x); ok {
		return v.Toggle(u.Source)
	}
	i, ok := v.ColumnAt(x)
	if !ok {
		return false
	}
	return v.coord.Click(v.Target(i))
}

// ClickColumn handles a click on display column i.
func (v *PixelView) ClickColumn(i int) bool {
	if i < 0 || i >= v.grid.Columns {
		return false
	}
	return v.coord.Click(v.Target(i))
}

// Render draws the view through the current transform.
func (v *PixelView) Render(format Format, opts ...sink.Option) ([]byte, error) {
	base := []sink.Option{sink.WithView(v.kind.String()), sink.WithViewport(v.zoom.Transform())}
	if v.state != nil && v.kind == selection.MotifView {
		base = append(base, sink.WithSelected(v.state.Selected()...))
	}
	opts = append(base, opts...)
	switch format {
	case FormatSVG, "":
		return sink.RenderSVG(v.grid, opts...), nil
	case FormatPNG:
		return sink.RenderPNG(v.grid, opts...)
	case FormatJSON:
		return sink.RenderJSON(v.grid, opts...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}
