package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP handler with all routes and middleware.
func (s *Server) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.Signup)
		r.Post("/login", s.Login)
		r.Post("/refresh", s.Refresh)

		r.With(s.optionalAuth).Get("/session", s.Session)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.Logout)
			r.Get("/me", s.Me)
			r.Delete("/me", s.DeleteAccount)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/categories", s.ListCategories)
		r.Post("/categories", s.CreateCategory)

		r.Route("/vault", func(r chi.Router) {
			r.Get("/", s.ListVault)
			r.Post("/", s.CreateVaultEntry)
			r.Post("/export", s.ExportVault)
			r.Get("/{id}", s.GetVaultEntry)
			r.Put("/{id}", s.UpdateVaultEntry)
			r.Delete("/{id}", s.DeleteVaultEntry)
			r.Post("/{id}/reveal", s.RevealVaultEntry)
		})
	})

	return r
}
