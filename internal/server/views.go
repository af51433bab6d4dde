package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) renderMotif(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r, pipeline.MotifView, nil)
}

func (s *Server) renderPanel(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderView(w, r, pipeline.PanelView(id), []int{id})
}

// renderView runs the pipeline for one view in the {format} of the request.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, name string, networks []int) {
	format := chi.URLParam(r, "format")
	opts, err := s.viewOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Networks = networks

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := res.Artifacts[pipeline.ArtifactName(name, format)]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no %s artifact for %s", format, name))
		return
	}
	writeBody(w, http.StatusOK, contentTypes[format], data)
}

// viewOptions reads pipeline options from the query string. Unset values
// come from the server's view config.
func (s *Server) viewOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	o := pipeline.Options{
		Formats:          []string{format},
		Width:            s.cfg.Motif.Width,
		Height:           s.cfg.Motif.Height,
		PanelHeight:      s.cfg.Panel.Height,
		Flat:             !s.cfg.Abstract,
		MotifOrdering:    s.cfg.MotifOrdering,
		GraphletOrdering: s.cfg.GraphletOrdering,
		Palette:          q.Get("palette"),
		PanelPalette:     q.Get("panel_palette"),
		Title:            q.Get("title"),
	}
	if v := q.Get("order"); v != "" {
		o.MotifOrdering = provider.ParseOrdering(v)
	}
	if v := q.Get("gdv_order"); v != "" {
		o.GraphletOrdering = provider.ParseOrdering(v)
	}
	if v := q.Get("flat"); v != "" {
		o.Flat, _ = strconv.ParseBool(v)
	}
	o.Refresh, _ = strconv.ParseBool(q.Get("refresh"))

	floats := []struct {
		key string
		dst *float64
	}{
		{"width", &o.Width},
		{"height", &o.Height},
		{"panel_height", &o.PanelHeight},
		{"zoom", &o.Zoom},
		{"pan", &o.PanX},
	}
	for _, f := range floats {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", f.key, v)
		}
		*f.dst = n
	}

	if v := q.Get("unfold"); v != "" {
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 {
				return o, errors.New(errors.ErrCodeInvalidInput, "invalid cluster %q", part)
			}
			o.Unfold = append(o.Unfold, n)
		}
	}

	if err := o.ValidateAndSetDefaults(); err != nil {
		return o, errors.New(errors.ErrCodeInvalidInput, "%v", err)
	}
	return o, nil
}
