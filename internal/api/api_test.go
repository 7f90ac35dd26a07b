package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/berkana/internal/models"
	"github.com/starford/berkana/internal/shelf"
	"github.com/starford/berkana/internal/testutil"
)

func testRouter(t *testing.T, authToken string) (*shelf.Shelf, http.Handler) {
	t.Helper()
	sh := testutil.TestShelf(t)
	year := 1973
	sh.Put("douban1449351", &models.Book{
		ID:        "douban1449351",
		Title:     "呐喊",
		SourceURL: "https://book.douban.com/subject/1449351/",
		PubYear:   &year,
	})
	sh.Put("douban1007914", &models.Book{
		ID:        "douban1007914",
		Title:     "阿Q正传",
		SourceURL: "https://book.douban.com/subject/1007914/",
	})
	return sh, NewRouter(sh, authToken != "", authToken)
}

func TestHealthLive(t *testing.T) {
	_, router := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health = %d, want 200", w.Code)
	}
}

func TestListBooks(t *testing.T) {
	_, router := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d, body = %s", w.Code, w.Body.String())
	}

	var resp BookListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Books) != 2 {
		t.Fatalf("total = %d, books = %d, want 2", resp.Total, len(resp.Books))
	}
	// Sorted by ID.
	if resp.Books[0].ID != "douban1007914" || resp.Books[1].ID != "douban1449351" {
		t.Errorf("order = %s, %s", resp.Books[0].ID, resp.Books[1].ID)
	}
	if resp.Books[1].Title != "呐喊" {
		t.Errorf("title = %q", resp.Books[1].Title)
	}
}

func TestGetBook(t *testing.T) {
	_, router := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/books/douban1449351", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}

	var b models.Book
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	if b.Title != "呐喊" {
		t.Errorf("title = %q", b.Title)
	}
	if b.PubYear == nil || *b.PubYear != 1973 {
		t.Errorf("pub year = %v", b.PubYear)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	_, router := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/books/douban999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing book = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testRouter(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testRouter(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testRouter(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_HealthStaysOpen(t *testing.T) {
	_, router := testRouter(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health behind auth = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
