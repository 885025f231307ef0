// Package server exposes a model over HTTP.
//
// Routes:
//
//	GET /graph/present/{label}?requires=N&required_by=M&layout=K  presentation graph
//	GET /info/{label}                                            component detail
//	GET /svg/{label}?requires=N&required_by=M&layout=K&style=S    rendered diagram
//	GET /ws                                                      interactive pane session
//	GET /metrics                                                 Prometheus metrics
//	GET /healthz                                                 liveness
//
// Unknown components answer 404 with a well-formed body (an empty graph or
// a detail with "found": false) so clients can tell "not found" apart
// from transport failures.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depview/pkg/cache"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/model"
	"github.com/matzehuels/depview/pkg/observability/prom"
	"github.com/matzehuels/depview/pkg/render"
	"github.com/matzehuels/depview/pkg/view"
)

const (
	DefaultAddr     = "127.0.0.1:8080"
	DefaultCacheTTL = 10 * time.Minute
)

// Options configure a Server.
type Options struct {
	Addr       string
	Canvas     render.Canvas
	Layout     layout.Kind
	Requires   int
	RequiredBy int
	Steps      int
	Cache      cache.Cache
	CacheTTL   time.Duration
	Metrics    *prom.Metrics
	Logger     *log.Logger
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Canvas == (render.Canvas{}) {
		o.Canvas = render.DefaultCanvas()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Server serves one model. The model may be replaced with Import while
// serving; every live pane session is reset.
type Server struct {
	opts   Options
	logger *log.Logger
	keyer  cache.Keyer
	router chi.Router

	mu          sync.RWMutex
	model       *model.Model
	fingerprint string

	sessMu   sync.Mutex
	sessions map[*view.Pane]struct{}
}

// New creates a server for m. fingerprint identifies m's content in cache
// keys.
func New(m *model.Model, fingerprint string, opts Options) *Server {
	opts.SetDefaults()
	s := &Server{
		opts:        opts,
		logger:      opts.Logger,
		keyer:       cache.NewDefaultKeyer(),
		model:       m,
		fingerprint: fingerprint,
		sessions:    make(map[*view.Pane]struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/graph/present/{label}", s.handlePresent)
	r.Get("/info/{label}", s.handleInfo)
	r.Get("/svg/{label}", s.handleSVG)
	r.Get("/ws", s.handleWS)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.opts.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Import replaces the model content and resets every live session. On
// error the previous content is kept.
func (s *Server) Import(g model.ExternalGraph, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.model.Import(g); err != nil {
		return err
	}
	s.fingerprint = fingerprint

	s.sessMu.Lock()
	panes := make([]*view.Pane, 0, len(s.sessions))
	for p := range s.sessions {
		panes = append(panes, p)
	}
	s.sessMu.Unlock()
	for _, p := range panes {
		p.Reset()
	}
	s.logger.Info("model imported", "nodes", s.model.Len(), "edges", s.model.EdgeCount(), "sessions", len(panes))
	return nil
}

// Sessions returns the number of live pane sessions.
func (s *Server) Sessions() int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	return len(s.sessions)
}

func (s *Server) snapshot() (*model.Model, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.fingerprint
}

// readModel runs fn with the model and its fingerprint. Import waits until
// fn returns, so documents and cache keys derive from the same content.
func (s *Server) readModel(fn func(m *model.Model, fingerprint string)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.model, s.fingerprint)
}

func (s *Server) addSession(p *view.Pane) {
	s.sessMu.Lock()
	s.sessions[p] = struct{}{}
	s.sessMu.Unlock()
}

func (s *Server) removeSession(p *view.Pane) {
	s.sessMu.Lock()
	delete(s.sessions, p)
	s.sessMu.Unlock()
}
