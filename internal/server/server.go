// Package server serves motifscope views over HTTP.
//
// Three groups of routes are mounted:
//
//   - /api: the provider wire protocol (load_dataset, get_motif_sp, get_gdv,
//     get_graph_meta, get_graph_data) plus shorter aliases. An
//     [provider.HTTPProvider] pointed at <addr>/api talks to this server.
//   - /view: stateless renderings of the motif view and graphlet panels in
//     any pipeline format, cached like the render command's artifacts.
//   - /session: per-browser linked views. Each session owns a motif view,
//     its graphlet panels and the node-link detail; the interactive SVGs
//     report hover, leave, click, toggle and zoom events back to it.
//
// Events of one session are serialized by a per-session mutex, which plays
// the role of the terminal explorer's event loop.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/observability"
	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanupInterval = time.Minute
)

// Server serves one provider.
type Server struct {
	provider provider.Provider
	runner   *pipeline.Runner
	store    cache.Cache
	cfg      view.Config
	sched    selection.Scheduler
	logger   *log.Logger
	sessions *registry
	router   chi.Router

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and session logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCache caches rendered /view artifacts in c.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.store = c } }

// WithViewConfig sets the sizes, palettes, orderings and dwell delay of new
// sessions.
func WithViewConfig(cfg view.Config) Option { return func(s *Server) { s.cfg = cfg } }

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) { s.sessions = newRegistry(d) }
}

// WithScheduler arms every session's dwell timers on sched instead of
// wall-clock timers.
func WithScheduler(sched selection.Scheduler) Option {
	return func(s *Server) { s.sched = sched }
}

// New returns a server for p.
func New(p provider.Provider, opts ...Option) *Server {
	s := &Server{
		provider: p,
		cfg:      view.DefaultConfig(),
		logger:   log.Default(),
		sessions: newRegistry(DefaultSessionTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = cache.NewNullCache()
	}
	s.cfg.ValidateAndSetDefaults()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.runner = pipeline.NewRunner(p, s.store, nil, s.logger)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/load_dataset/{name}", s.loadDataset)
		r.Get("/get_motif_sp", s.motifProfiles)
		r.Get("/get_gdv", s.graphletDegrees)
		r.Get("/get_graph_meta/{id}", s.meta)
		r.Get("/get_graph_data", s.graph)

		r.Get("/motif", s.motifProfiles)
		r.Get("/gdv/{id}", s.graphletDegrees)
		r.Get("/meta/{id}", s.meta)
		r.Get("/graph", s.graph)
	})

	r.Route("/view", func(r chi.Router) {
		r.Get("/motif.{format}", s.renderMotif)
		r.Get("/gdv/{id}.{format}", s.renderPanel)
	})

	r.Route("/session", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.sessionState)
			r.Delete("/", s.deleteSession)
			r.Post("/abstraction", s.setAbstraction)
			r.Post("/paging", s.setPaging)
			r.Post("/page", s.turnPage)
			r.Post("/ordering", s.setOrdering)
			r.Get("/detail", s.detailSVG)

			r.Get("/motif", s.motifSVG)
			r.Post("/motif/{event}", s.motifEvent)
			r.Post("/gdv/{id}", s.openPanel)
			r.Get("/gdv/{id}", s.panelSVG)
			r.Delete("/gdv/{id}", s.closePanel)
			r.Post("/gdv/{id}/{event}", s.panelEvent)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("serving", "addr", ln.Addr().String())

	go s.expireSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every session.
func (s *Server) Close() {
	s.sessions.closeAll()
	s.cancel()
}

func (s *Server) expireSessions(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.cleanup(); n > 0 {
				s.logger.Debug("expired sessions", "count", n)
			}
		}
	}
}

// observe reports every request through the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		hooks.OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBody(w, status, "application/json", data)
}

func writeBody(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

// statusOf maps error codes onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case stderrors.Is(err, ErrNotFound), stderrors.Is(err, ErrExpired):
		return http.StatusNotFound
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return errors.HTTPStatus(err)
}
