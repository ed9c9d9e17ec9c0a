// Package server exposes a running broadcast over HTTP.
//
// # Endpoints
//
//	GET  /healthz               - liveness
//	GET  /v1/broadcast          - broadcast ID, title and seat counts
//	GET  /v1/assignment         - seat assignment (?format=json|text|dot|svg)
//	GET  /v1/frame              - latest frame
//	GET  /v1/frames             - frames as server-sent events
//	GET  /v1/results            - latest update of every reporting entry
//	GET  /v1/results/{entry}    - current state of one entry
//	POST /v1/results            - submit an update
//	GET  /metrics               - metrics, if configured
//
// Errors are returned as JSON objects with a machine-readable code:
//
//	{"code": "UNKNOWN_PARTY", "message": "entry \"a\": unknown party \"LIB\""}
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hemicycle/pkg/feed"
)

// Server serves one coordinated broadcast.
type Server struct {
	coord   *feed.Coordinator
	logger  *log.Logger
	metrics http.Handler
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New returns a server for the broadcast owned by c.
func New(c *feed.Coordinator, opts ...Option) *Server {
	s := &Server{coord: c, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/broadcast", s.handleBroadcast)
		r.Get("/assignment", s.handleAssignment)
		r.Get("/frame", s.handleFrame)
		r.Get("/frames", s.handleFrames)
		r.Get("/results", s.handleResults)
		r.Post("/results", s.handleSubmit)
		r.Get("/results/{entry}", s.handleResult)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
