package sink

import (
	"bytes"
	"image/color"
	"image/png"
	"math"

	"git.sr.ht/~sbinet/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
)

var (
	pngBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pngOutline    = color.RGBA{R: 51, G: 51, B: 51, A: 255}
	pngUnfold     = color.RGBA{R: 255, G: 255, B: 255, A: 153}
)

// RenderPNG rasterizes g. Interaction options are ignored.
func RenderPNG(g layout.Grid, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	f := r.project(g)
	w := max(1, int(math.Ceil(g.Frame.Width*r.scale)))
	h := max(1, int(math.Ceil(g.Frame.Height*r.scale)))

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.SetColor(pngBackground)
	dc.Clear()

	for _, pc := range f.Columns {
		for _, c := range g.Cells(pc.Index) {
			fill, err := colorful.Hex(c.Color)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cell color %q", c.Color)
			}
			dc.SetColor(fill)
			dc.DrawRectangle(pc.X, c.Y, f.CellWidth, c.H)
			dc.Fill()
		}
	}

	dc.SetColor(pngOutline)
	dc.SetLineWidth(1)
	for _, o := range f.Overlays {
		dc.DrawRectangle(o.X, 0, o.W, g.Frame.Height)
		dc.Stroke()
	}
	for _, u := range f.Unfolds {
		dc.SetColor(pngUnfold)
		dc.DrawRectangle(u.X, 0, u.W, g.Frame.Height)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
