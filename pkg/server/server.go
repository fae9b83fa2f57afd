// Package server exposes sessions over HTTP.
//
// Routes:
//
//	POST   /sessions                                  open a session from declaration JSON
//	GET    /sessions/{id}                             session summary
//	DELETE /sessions/{id}                             close a session
//	GET    /sessions/{id}/mro/{class}                 linearization (?compare=true adds depth-first)
//	GET    /sessions/{id}/resolve/{class}/{member}    owner of a member (?all=true lists every definer)
//	GET    /sessions/{id}/super/{class}/{after}/{member}
//	GET    /sessions/{id}/graph                       DOT source (?focus=CLASS)
//	GET    /healthz
//
// Failures are JSON objects with a code, a message and, for engine errors,
// the structured report from package diag.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mro/pkg/pipeline"
	"github.com/matzehuels/mro/pkg/session"
)

// maxBodyBytes bounds declaration uploads.
const maxBodyBytes = 4 << 20

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  session.Store
	Logger *log.Logger
	// CleanupInterval is how often expired sessions are reaped.
	CleanupInterval time.Duration
}

// Server serves the session API.
type Server struct {
	runner  *pipeline.Runner
	store   session.Store
	logger  *log.Logger
	cleanup time.Duration
	router  chi.Router
}

// New creates a server. Nil fields get in-memory defaults.
func New(opts Options) *Server {
	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		logger:  opts.Logger,
		cleanup: opts.CleanupInterval,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}
	if s.cleanup <= 0 {
		s.cleanup = time.Minute
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/mro/{class}", s.handleMRO)
			r.Get("/resolve/{class}/{member}", s.handleResolve)
			r.Get("/super/{class}/{after}/{member}", s.handleSuper)
			r.Get("/graph", s.handleGraph)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitorDone := make(chan struct{})
	defer func() {
		stopJanitor()
		<-janitorDone
	}()
	go func() {
		defer close(janitorDone)
		session.RunJanitor(janitorCtx, s.store, s.cleanup, func(n int) {
			s.logger.Debug("reaped expired sessions", "count", n)
		})
	}()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		_ = s.store.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errc
	_ = s.store.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
