package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	v1 "github.com/madhava-poojari/learnsphere/internal/api/v1"
	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/web"
)

type Server struct {
	cfg   *config.Config
	store store.Repository
	svc   *service.Services
}

func NewServer(cfg *config.Config, repo store.Repository, svc *service.Services) *Server {
	return &Server{cfg: cfg, store: repo, svc: svc}
}

// Handler mounts the JSON API under /api/v1 and the CSRF-protected pages at
// the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", auth.ViewerHeader},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Mount("/", v1.NewAPI(s.cfg, s.store, s.svc).Routes())
	})

	pages := web.New(s.cfg, s.store, s.svc)
	r.Mount("/", web.Protect(s.cfg)(pages.Routes()))
	return r
}

func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// receipt uploads need longer than plain page loads
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
