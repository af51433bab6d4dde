package sink

import (
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

// Option configures all sinks.
type Option func(*renderer)

type renderer struct {
	title       string
	view        string
	endpoint    string
	interactive bool
	selected    map[int]bool
	transform   viewport.Transform
	scale       float64
}

func newRenderer(opts ...Option) renderer {
	r := renderer{view: "motif", transform: viewport.Identity, scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithTitle sets the document title.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// WithView names the view ("motif" or "gdv"). It prefixes column group ids.
func WithView(name string) Option { return func(r *renderer) { r.view = name } }

// WithInteraction embeds a script that reports hover, leave, click, unfold
// and wheel events to endpoint.
func WithInteraction(endpoint string) Option {
	return func(r *renderer) { r.interactive = true; r.endpoint = endpoint }
}

// WithSelected marks item ids as selected.
func WithSelected(ids ...int) Option {
	return func(r *renderer) {
		if r.selected == nil {
			r.selected = make(map[int]bool, len(ids))
		}
		for _, id := range ids {
			r.selected[id] = true
		}
	}
}

// WithViewport projects the grid through t before drawing.
func WithViewport(t viewport.Transform) Option {
	return func(r *renderer) { r.transform = t }
}

// WithScale sets the raster scale factor for PNG output (default 1).
func WithScale(s float64) Option {
	return func(r *renderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

func (r renderer) project(g layout.Grid) viewport.Frame {
	return viewport.Apply(r.transform, g)
}
