package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/sink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

// svgBody is a handler result written as image/svg+xml.
type svgBody []byte

// stateBody describes a session to the browser.
type stateBody struct {
	ID             string      `json:"id"`
	Columns        int         `json:"columns"`
	DisplayColumns int         `json:"display_columns"`
	Abstract       bool        `json:"abstract"`
	Paging         bool        `json:"paging"`
	Panels         []int       `json:"panels"`
	Selected       []int       `json:"selected"`
	Detail         *detailBody `json:"detail,omitempty"`
	Busy           bool        `json:"busy"`
	Error          string      `json:"error,omitempty"`
	ExpiresAt      time.Time   `json:"expires_at"`
}

type detailBody struct {
	Network int `json:"network"`
	Node    int `json:"node"`
	Page    int `json:"page"`
	Pages   int `json:"pages,omitempty"`
}

type tooltipBody struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// eventBody is the union of the bodies posted by interactive SVGs.
type eventBody struct {
	Col     *int    `json:"col"`
	Cluster *int    `json:"cluster"`
	Delta   float64 `json:"delta"`
	X       float64 `json:"x"`
}

// Session events posted by interactive SVGs.
const (
	eventHover  = "hover"
	eventLeave  = "leave"
	eventClick  = "click"
	eventToggle = "toggle"
	eventZoom   = "zoom"
)

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.create(s.ctx, func(ctx context.Context, post func(func())) *view.Session {
		sched := s.sched
		if sched == nil {
			sched = selection.LoopScheduler{Post: post}
		}
		return view.NewSession(ctx, s.provider, sched, post, s.cfg, view.WithLogger(s.logger))
	})

	var err error
	sess.post(func() {
		if name := r.URL.Query().Get("dataset"); name != "" {
			err = sess.view.LoadDataset(r.Context(), name)
		} else {
			err = sess.view.Reload(r.Context())
		}
	})
	if err != nil {
		s.sessions.delete(sess.ID)
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID)

	var body stateBody
	sess.post(func() { body = s.state(sess) })
	w.Header().Set("Location", "/session/"+sess.ID)
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.delete(chi.URLParam(r, "sid")) {
		s.writeError(w, r, ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	s.inSession(w, r, func(sess *session) (any, error) {
		return s.state(sess), nil
	})
}

func (s *Server) motifSVG(w http.ResponseWriter, r *http.Request) {
	s.inSession(w, r, func(sess *session) (any, error) {
		return renderInteractive(sess.view.Motif(), "/session/"+sess.ID+"/motif")
	})
}

func (s *Server) panelSVG(w http.ResponseWriter, r *http.Request) {
	s.inPanel(w, r, func(sess *session, v *view.PixelView, id int) (any, error) {
		return renderInteractive(v, "/session/"+sess.ID+"/gdv/"+strconv.Itoa(id))
	})
}

func (s *Server) detailSVG(w http.ResponseWriter, r *http.Request) {
	s.inSession(w, r, func(sess *session) (any, error) {
		data := sess.view.Detail().SVG()
		if data == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "no detail drawn yet")
		}
		return svgBody(data), nil
	})
}

func (s *Server) openPanel(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		if err := sess.view.AddGraphletPanel(r.Context(), id); err != nil {
			return nil, err
		}
		return s.state(sess), nil
	})
}

func (s *Server) closePanel(w http.ResponseWriter, r *http.Request) {
	s.inPanel(w, r, func(sess *session, _ *view.PixelView, id int) (any, error) {
		sess.view.RemoveGraphletPanel(id)
		return s.state(sess), nil
	})
}

func (s *Server) setAbstraction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		sess.view.SetAbstraction(body.On)
		return s.state(sess), nil
	})
}

func (s *Server) setPaging(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		sess.view.SetPaging(body.On)
		return s.state(sess), nil
	})
}

func (s *Server) setOrdering(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Motif *string `json:"motif"`
		GDV   *string `json:"gdv"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		if body.Motif != nil {
			if err := sess.view.SetMotifOrdering(r.Context(), provider.ParseOrdering(*body.Motif)); err != nil {
				return nil, err
			}
		}
		if body.GDV != nil {
			if err := sess.view.SetGraphletOrdering(r.Context(), provider.ParseOrdering(*body.GDV)); err != nil {
				return nil, err
			}
		}
		return s.state(sess), nil
	})
}

func (s *Server) turnPage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Forward bool `json:"forward"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		if !sess.view.NextClusterPage(body.Forward) {
			return nil, errors.New(errors.ErrCodeNotFound, "no detail to page")
		}
		return s.state(sess), nil
	})
}

func (s *Server) motifEvent(w http.ResponseWriter, r *http.Request) {
	var body eventBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		return s.handleEvent(r, sess, sess.view.Motif(), body)
	})
}

func (s *Server) panelEvent(w http.ResponseWriter, r *http.Request) {
	var body eventBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inPanel(w, r, func(sess *session, v *view.PixelView, _ int) (any, error) {
		return s.handleEvent(r, sess, v, body)
	})
}

// handleEvent applies one pointer event to v. It runs under the session
// lock.
func (s *Server) handleEvent(r *http.Request, sess *session, v *view.PixelView, body eventBody) (any, error) {
	event := chi.URLParam(r, "event")
	switch event {
	case eventHover:
		col, err := required(body.Col, "col")
		if err != nil {
			return nil, err
		}
		v.HoverColumn(col)
		tip, ok, err := sess.view.Tooltip(r.Context(), v, col)
		if err != nil {
			s.logger.Warn("tooltip metadata", "col", col, "err", err)
		}
		if !ok {
			return nil, nil
		}
		return tooltipBody{Title: tip.Title, Lines: tip.Lines}, nil
	case eventLeave:
		v.Leave()
		return nil, nil
	case eventClick:
		col, err := required(body.Col, "col")
		if err != nil {
			return nil, err
		}
		v.ClickColumn(col)
		return s.state(sess), nil
	case eventToggle:
		cluster, err := required(body.Cluster, "cluster")
		if err != nil {
			return nil, err
		}
		v.Toggle(cluster)
		return s.state(sess), nil
	case eventZoom:
		t := v.Wheel(body.Delta, body.X)
		return map[string]float64{"k": t.K, "x": t.X}, nil
	default:
		return nil, errors.New(errors.ErrCodeNotFound, "unknown event %q", event)
	}
}

// inSession looks up {sid} and runs fn under the session lock. fn's result
// is written as SVG, as JSON, or as 204 No Content when nil.
func (s *Server) inSession(w http.ResponseWriter, r *http.Request, fn func(*session) (any, error)) {
	sess, err := s.sessions.get(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var res any
	sess.post(func() { res, err = fn(sess) })
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch v := res.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case svgBody:
		writeBody(w, http.StatusOK, "image/svg+xml", v)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

// inPanel is inSession for routes naming an open graphlet panel {id}.
func (s *Server) inPanel(w http.ResponseWriter, r *http.Request, fn func(*session, *view.PixelView, int) (any, error)) {
	id, err := itemID(r, "idx")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.inSession(w, r, func(sess *session) (any, error) {
		v, ok := sess.view.Panel(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "panel %d is not open", id)
		}
		return fn(sess, v, id)
	})
}

// state snapshots sess. It runs under the session lock.
func (s *Server) state(sess *session) stateBody {
	vs := sess.view
	b := stateBody{
		ID:             sess.ID,
		DisplayColumns: vs.Motif().Grid().Columns,
		Abstract:       vs.Config().Abstract,
		Paging:         vs.Config().Paging,
		Panels:         nonNil(vs.Panels()),
		Selected:       nonNil(vs.State().Selected()),
		Busy:           vs.Detail().Busy(),
		ExpiresAt:      s.sessions.expiry(sess),
	}
	if p := vs.Motif().Payload(); p != nil {
		b.Columns = p.Data().Matrix.Len()
	}
	if d, ok := vs.State().Detail(); ok {
		b.Detail = &detailBody{Network: d.ItemID, Node: d.NodeID, Page: d.Page}
		if res, ok := vs.Detail().Last(); ok && res.Graph != nil && res.Request.ItemID == d.ItemID {
			b.Detail.Pages = res.Graph.Pages
		}
	}
	if err := vs.Err(); err != nil {
		b.Error = errors.UserMessage(err)
	}
	return b
}

func renderInteractive(v *view.PixelView, endpoint string) (any, error) {
	data, err := v.Render(view.FormatSVG, sink.WithInteraction(endpoint))
	if err != nil {
		return nil, err
	}
	return svgBody(data), nil
}

// decodeBody decodes a JSON request body. An empty body leaves dst unset.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
}

func required(v *int, name string) (int, error) {
	if v == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing %q", name)
	}
	return *v, nil
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
