package pipeline

import (
	"slices"

	"github.com/matzehuels/motifscope/pkg/abstraction"
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

// View is one laid-out pixel view, ready to render.
type View struct {
	Name      string
	Payload   matrix.Payload
	Sequence  *abstraction.Sequence
	Grid      layout.Grid
	Transform viewport.Transform
	Palette   string
	Unfolded  []int
	Selected  []int
}

// ViewSpec describes how to lay out one payload.
type ViewSpec struct {
	Name      string
	Frame     layout.Frame
	Palette   string
	Flat      bool
	Unfold    []int
	Transform viewport.Transform
	Selected  []int
}

// BuildView folds and lays out p. Unfold lists source clusters to show in
// full; a cluster that is not folded by default is an error.
func BuildView(p matrix.Payload, spec ViewSpec) (*View, error) {
	b := p.Data()
	m := b.Matrix
	if m == nil {
		m, _ = matrix.New(nil, nil)
	}
	clusters := matrix.Partition(b.Clusters, m.Len())

	var seq *abstraction.Sequence
	if spec.Flat {
		seq = abstraction.Identity(m, clusters)
	} else {
		flags := abstraction.NewFlags()
		for _, c := range spec.Unfold {
			if c < 0 || c >= len(clusters) || clusters[c].Size() <= abstraction.Threshold {
				return nil, errors.New(errors.ErrCodeInvalidInput, "cluster %d is not foldable", c)
			}
			flags.Set(c, false)
		}
		seq = abstraction.Compute(m, clusters, flags)
	}

	g := layout.Compute(seq, spec.Frame, m.Rows(), layout.WithColors(colorsFor(spec.Palette)))
	z := viewport.PixelMatrix(spec.Frame.Width, spec.Frame.Height)
	return &View{
		Name:      spec.Name,
		Payload:   p,
		Sequence:  seq,
		Grid:      g,
		Transform: z.Set(spec.Transform),
		Palette:   spec.Palette,
		Unfolded:  slices.Clone(spec.Unfold),
		Selected:  spec.Selected,
	}, nil
}

func colorsFor(palette string) *scale.ColorScale {
	if palette == "" {
		return scale.Diverging()
	}
	return Palette(palette)
}

// Frame returns the grid projected through the view's transform.
func (v *View) Frame() viewport.Frame { return viewport.Apply(v.Transform, v.Grid) }
