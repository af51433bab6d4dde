package sink

import (
	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
)

type jsonOutput struct {
	View       string        `json:"view"`
	Title      string        `json:"title,omitempty"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	CellWidth  float64       `json:"cell_width"`
	CellHeight float64       `json:"cell_height"`
	Zoom       float64       `json:"zoom"`
	Columns    []jsonColumn  `json:"columns"`
	Clusters   []jsonCluster `json:"clusters"`
	Unfolds    []jsonUnfold  `json:"unfolds,omitempty"`
}

type jsonColumn struct {
	Index       int        `json:"index"`
	ID          int        `json:"id"`
	X           float64    `json:"x"`
	Placeholder bool       `json:"placeholder,omitempty"`
	Selected    bool       `json:"selected,omitempty"`
	Cells       []jsonCell `json:"cells,omitempty"`
}

type jsonCell struct {
	Row   int     `json:"row"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type jsonCluster struct {
	Source int     `json:"source"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Folded bool    `json:"folded,omitempty"`
}

type jsonUnfold struct {
	Index  int     `json:"index"`
	Source int     `json:"source"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
}

// RenderJSON dumps the visible geometry of g.
func RenderJSON(g layout.Grid, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	f := r.project(g)
	out := jsonOutput{
		View:       r.view,
		Title:      r.title,
		Width:      g.Frame.Width,
		Height:     g.Frame.Height,
		CellWidth:  f.CellWidth,
		CellHeight: f.CellHeight,
		Zoom:       f.Transform.K,
		Columns:    make([]jsonColumn, 0, len(f.Columns)),
		Clusters:   make([]jsonCluster, 0, len(f.Overlays)),
	}
	for _, pc := range f.Columns {
		col := g.Column(pc.Index)
		jc := jsonColumn{
			Index:       pc.Index,
			ID:          col.ID,
			X:           pc.X,
			Placeholder: col.Placeholder,
			Selected:    r.selected[col.ID],
		}
		for _, c := range g.Cells(pc.Index) {
			jc.Cells = append(jc.Cells, jsonCell{Row: c.Row, Value: c.Value, Color: c.Color})
		}
		out.Columns = append(out.Columns, jc)
	}
	for _, o := range f.Overlays {
		out.Clusters = append(out.Clusters, jsonCluster{Source: o.Source, X: o.X, Width: o.W, Folded: o.Folded})
	}
	for _, u := range f.Unfolds {
		out.Unfolds = append(out.Unfolds, jsonUnfold{Index: u.Index, Source: u.Source, X: u.X, Width: u.W})
	}
	return json.MarshalIndent(out, "", "  ")
}
