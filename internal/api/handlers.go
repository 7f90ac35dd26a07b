package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/shelf"
)

// Handler holds API route handlers over the shelf.
type Handler struct {
	shelf *shelf.Shelf
}

// NewHandler creates a new Handler.
func NewHandler(sh *shelf.Shelf) *Handler {
	return &Handler{shelf: sh}
}

// BookListItem is a lightweight item in a list response.
type BookListItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BookListResponse wraps shelf listings.
type BookListResponse struct {
	Books []BookListItem `json:"books"`
	Total int            `json:"total"`
}

// ListBooks handles GET /books. Records come back sorted by ID.
func (h *Handler) ListBooks(w http.ResponseWriter, _ *http.Request) {
	books := h.shelf.Books()
	items := make([]BookListItem, len(books))
	for i, b := range books {
		items[i] = BookListItem{ID: b.ID, Title: b.DisplayTitle(), URL: b.SourceURL}
	}
	writeJSON(w, http.StatusOK, BookListResponse{Books: items, Total: len(items)})
}

// GetBook handles GET /books/{id}, returning the full cached record.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.shelf.Find(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get book failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, b)
}
