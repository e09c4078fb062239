// Package api is the thin HTTP surface over the estimation engine. It does
// no statistics of its own: decode, validate, dispatch, encode.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"estiscan/ports"
)

// Server wires the estimation endpoints onto a chi router
type Server struct {
	router    *chi.Mux
	estimator ports.EstimatorPort
	runs      ports.RunRepository // optional; nil disables persistence routes
}

// NewServer creates the HTTP server around the engine
func NewServer(estimator ports.EstimatorPort, runs ports.RunRepository) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		estimator: estimator,
		runs:      runs,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/estimate", s.handleEstimate)
	s.router.Post("/entropy", s.handleEntropy)
	if s.runs != nil {
		s.router.Get("/runs", s.handleListRuns)
		s.router.Get("/runs/{id}", s.handleGetRun)
	}
}

// Handler exposes the router for http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
