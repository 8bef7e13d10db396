package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/pipeline"
)

// Server is the HTTP API server for docaudit.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	loader       *loader.Loader
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, l *loader.Loader, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		loader:       l,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/check", s.handleCheck)
		r.Get("/api/check/{jobID}/status", s.handleCheckStatus)
		r.Get("/api/check/{jobID}/report", s.handleCheckReport)
		r.Post("/api/validate", s.handleValidate)
		r.Get("/api/stats/checks", s.handleCheckStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
