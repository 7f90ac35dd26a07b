package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/berkana/internal/shelf"
)

// NewRouter creates a chi router serving the read-only shelf API.
// authEnabled controls whether Bearer token auth is enforced on the book
// routes; the liveness probe stays open.
func NewRouter(sh *shelf.Shelf, authEnabled bool, token string) chi.Router {
	h := NewHandler(sh)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Get("/api/books", h.ListBooks)
		r.Get("/api/books/{id}", h.GetBook)
	})

	return r
}
