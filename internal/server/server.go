// Package server exposes interview-test generation over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/intertest/internal/llm"
	"github.com/abhisek/intertest/internal/testgen"
)

// Generator produces interview tests.
type Generator interface {
	Generate(ctx context.Context, req testgen.TestRequest) (*testgen.Test, error)
}

// Options configures the HTTP server.
type Options struct {
	// RequestTimeout bounds a whole request, including every provider
	// attempt.
	RequestTimeout time.Duration

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Server represents the HTTP API server.
type Server struct {
	opts      Options
	router    *chi.Mux
	generator Generator
	providers []llm.Provider
	logger    logrus.FieldLogger
}

// New creates a new API server. providers is the dispatcher's priority
// list, reported by the providers endpoint.
func New(opts Options, gen Generator, providers []llm.Provider, logger logrus.FieldLogger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * llm.DefaultAttemptTimeout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		opts:      opts,
		generator: gen,
		providers: providers,
		logger:    logger,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tests", s.handleGenerateTest)
		r.Get("/providers", s.handleListProviders)
		r.Get("/options", s.handleOptions)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}).Info("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}
