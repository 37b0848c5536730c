// Package http exposes the tracker to a browser widget as a small local JSON
// API. A single Session backs the whole server, so every handler that
// touches it holds the server lock.
package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pocketbook/internal/log"
	"pocketbook/internal/tracker"
)

type Server struct {
	http.Server

	mu      sync.Mutex
	session *tracker.Session
	logger  *log.Logger
	started time.Time
}

// NewServer builds the router around session. allowedOrigins feeds CORS;
// an empty list disables cross-origin access.
func NewServer(addr string, session *tracker.Session, logger *log.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{
		session: session,
		logger:  logger.WithComponent(log.ComponentHTTP),
		started: time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(allowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestMiddleware(s.logger, func(r *http.Request) string { return middleware.GetReqID(r.Context()) }))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/view", s.handleView)
		r.Get("/form/defaults", s.handleFormDefaults)
		r.Get("/session", s.handleSession)

		r.Post("/transactions", s.handleSubmit)
		r.Post("/transactions/{id}/edit", s.handleStartEdit)
		r.Post("/edit/cancel", s.handleCancelEdit)

		r.Post("/transactions/{id}/delete", s.handleRequestDelete)
		r.Post("/delete/confirm", s.handleConfirmDelete)
		r.Post("/delete/cancel", s.handleCancelDelete)
	})

	return r
}

// securityHeaders sets the headers that make sense for a JSON-only API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
