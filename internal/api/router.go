package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/api/shared"
)

// RouterDeps bundles the handlers and middleware the router mounts.
type RouterDeps struct {
	Auth     *AuthHandler
	Sessions *SessionHandler
	Stats    *StatsHandler
	AuthMW   *middleware.AuthMiddleware
	Logger   *slog.Logger
}

// NewRouter builds the HTTP router. Public endpoints handle registration and
// login; everything under /api requires a bearer token.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.TraceMiddleware(deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthMW.Authenticate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", deps.Sessions.Start)
			r.Get("/{id}/next", deps.Sessions.Next)
			r.Post("/{id}/answers", deps.Sessions.Submit)
			r.Post("/{id}/end", deps.Sessions.End)
			r.Get("/{id}/stats", deps.Sessions.Stats)
		})

		r.Put("/learners/level", deps.Auth.UpdateLevel)
		r.Get("/stats", deps.Stats.Learner)
	})

	return r
}
