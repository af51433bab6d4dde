package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
)

func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateDatasetName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.provider.LoadDataset(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("dataset loaded", "name", name)
	writeJSON(w, http.StatusOK, map[string]string{"dataset": name})
}

func (s *Server) motifProfiles(w http.ResponseWriter, r *http.Request) {
	p, err := s.provider.MotifProfiles(r.Context(), orderingQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeEncoded(w, r, func() ([]byte, error) { return matrix.EncodeMotif(p) })
}

func (s *Server) graphletDegrees(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.provider.GraphletDegrees(r.Context(), id, orderingQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeEncoded(w, r, func() ([]byte, error) { return matrix.EncodeGraphlet(p) })
}

func (s *Server) meta(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.provider.Meta(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeEncoded(w, r, func() ([]byte, error) { return matrix.EncodeMeta(m) })
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := provider.GraphQuery{
		NetworkID: id,
		NodeID:    intQuery(r, "nodeId", -1),
		Page:      intQuery(r, "clusterIdx", -1),
	}
	g, err := s.provider.Graph(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeEncoded(w, r, func() ([]byte, error) { return nodelink.Encode(g) })
}

func (s *Server) writeEncoded(w http.ResponseWriter, r *http.Request, encode func() ([]byte, error)) {
	data, err := encode()
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode response"))
		return
	}
	writeBody(w, http.StatusOK, "application/json", data)
}

// orderingQuery reads the x, y and cluster parameters. "none" keeps the
// natural order.
func orderingQuery(r *http.Request) provider.Ordering {
	q := r.URL.Query()
	o := provider.Ordering{X: q.Get("x"), Y: q.Get("y")}
	if o.X == provider.NoOrdering {
		o.X = ""
	}
	if o.Y == provider.NoOrdering {
		o.Y = ""
	}
	o.Cluster, _ = strconv.ParseBool(q.Get("cluster"))
	return o
}

// itemID reads the {id} path parameter, falling back to the query parameter
// key.
func itemID(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.URL.Query().Get(key)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid item id %q", raw)
	}
	return id, nil
}

// intQuery reads an integer query parameter, returning def when it is
// absent or malformed.
func intQuery(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}
