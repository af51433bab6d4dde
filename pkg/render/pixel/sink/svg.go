package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

const pixelCSS = `
    .col-g { cursor: pointer; }
    .col-g.placeholder { cursor: default; }
    .col-g:hover rect { stroke: #000; stroke-width: 0.5; }
    .col-g.selected rect { stroke: #ff7f00; stroke-width: 1; }
    .cluster-rect { fill: none; stroke: #333; stroke-width: 1; pointer-events: none; }
    .unfold { fill: #fff; fill-opacity: 0.6; stroke: #333; cursor: pointer; }`

const pixelJS = `
    const endpoint = document.currentScript.dataset.endpoint;
    function post(path, body) {
      return fetch(endpoint + path, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body)});
    }
    function reload() { location.reload(); }
    document.querySelectorAll('.col-g').forEach(el => {
      const col = Number(el.dataset.col);
      el.addEventListener('mouseenter', () => post('/hover', {col}));
      el.addEventListener('mouseleave', () => post('/leave', {}));
      el.addEventListener('click', () => post('/click', {col}).then(reload));
    });
    document.querySelectorAll('.unfold').forEach(el => {
      el.addEventListener('click', () => post('/toggle', {cluster: Number(el.dataset.cluster)}).then(reload));
    });
    document.documentElement.addEventListener('wheel', ev => {
      ev.preventDefault();
      post('/zoom', {delta: ev.deltaY, x: ev.offsetX}).then(reload);
    }, {passive: false});`

// RenderSVG renders g as an SVG document.
func RenderSVG(g layout.Grid, opts ...Option) []byte {
	r := newRenderer(opts...)
	f := r.project(g)
	w, h := int(math.Ceil(g.Frame.Width)), int(math.Ceil(g.Frame.Height))

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	if r.title != "" {
		canvas.Title(r.title)
	}
	fmt.Fprintf(&buf, "<style>%s\n</style>\n", pixelCSS)
	canvas.ClipPath(`id="frame"`)
	canvas.Rect(0, 0, w, h)
	canvas.ClipEnd()

	canvas.Group(`clip-path="url(#frame)"`)
	renderColumns(canvas, g, f, r)
	canvas.Group(`class="clusters"`)
	for _, o := range f.Overlays {
		canvas.Rect(round(o.X), 0, round(o.W), h, `class="cluster-rect"`,
			fmt.Sprintf(`data-cluster="%d"`, o.Source))
	}
	canvas.Gend()
	for _, u := range f.Unfolds {
		canvas.Rect(round(u.X), 0, max(1, round(u.W)), h, `class="unfold"`,
			fmt.Sprintf(`data-cluster="%d"`, u.Source))
	}
	canvas.Gend()

	if r.interactive {
		fmt.Fprintf(&buf, "<script type=\"text/javascript\" data-endpoint=%q><![CDATA[%s\n]]></script>\n",
			r.endpoint, pixelJS)
	}
	canvas.End()
	return buf.Bytes()
}

func renderColumns(canvas *svg.SVG, g layout.Grid, f viewport.Frame, r renderer) {
	cw := max(1, int(math.Ceil(f.CellWidth)))
	for _, pc := range f.Columns {
		col := g.Column(pc.Index)
		class := "col-g"
		switch {
		case col.Placeholder:
			class += " placeholder"
		case r.selected[col.ID]:
			class += " selected"
		}
		canvas.Group(
			fmt.Sprintf(`id="col-g-%s-%d-%d"`, r.view, col.ID, pc.Index),
			fmt.Sprintf(`class=%q`, class),
			fmt.Sprintf(`data-col="%d"`, pc.Index),
			fmt.Sprintf(`data-item="%d"`, col.ID),
			fmt.Sprintf(`transform="translate(%.2f,0)"`, pc.X),
		)
		if col.Placeholder {
			canvas.Rect(0, 0, cw, int(g.Frame.Height), "fill:#ffffff;fill-opacity:0")
		}
		for _, c := range g.Cells(pc.Index) {
			canvas.Rect(0, round(c.Y), cw, int(c.H), "fill:"+c.Color)
		}
		canvas.Gend()
	}
}

func round(v float64) int { return int(math.Round(v)) }
