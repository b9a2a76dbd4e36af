package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/garnizeh/bidtrack/api"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository/mock"
)

func newPortfoliosRouter(m *mock.Mocks, userID int64, role string) *mux.Router {
	h := api.NewPortfoliosHandler(m.Portfolios)
	r := mux.NewRouter()
	r.Use(asUser(userID, role))
	r.HandleFunc("/portfolios", h.Create).Methods("POST")
	r.HandleFunc("/portfolios", h.List).Methods("GET")
	r.HandleFunc("/portfolios/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/portfolios/{id}", h.Delete).Methods("DELETE")
	return r
}

func seedPortfolio(t *testing.T, m *mock.Mocks, userID int64, title string) int64 {
	t.Helper()
	id, err := m.Portfolios.CreatePortfolio(t.Context(), &models.Portfolio{
		UserID: userID, Title: title, Technologies: []string{"go"},
	})
	if err != nil {
		t.Fatalf("seed portfolio: %v", err)
	}
	return id
}

func TestPortfolioCreate(t *testing.T) {
	m := mock.NewMocks()
	r := newPortfoliosRouter(m, 1, models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/portfolios", map[string]any{
		"title": "CLI tools", "url": "https://example.com", "technologies": []string{"go", "sqlite"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(m.Portfolios.Stored) != 1 || m.Portfolios.Stored[0].UserID != 1 {
		t.Fatalf("portfolio not stored for caller: %+v", m.Portfolios.Stored)
	}

	w = doJSON(t, r, http.MethodPost, "/portfolios", map[string]any{"url": "https://example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", w.Code)
	}
}

func TestPortfolioList(t *testing.T) {
	m := mock.NewMocks()
	seedPortfolio(t, m, 1, "mine")
	seedPortfolio(t, m, 2, "theirs")

	w := doJSON(t, newPortfoliosRouter(m, 1, models.RoleUser), http.MethodGet, "/portfolios", nil)
	var items []models.Portfolio
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 || items[0].Title != "mine" {
		t.Fatalf("expected only own portfolios, got %+v", items)
	}

	// the userId filter is honored for admins only
	w = doJSON(t, newPortfoliosRouter(m, 9, models.RoleAdmin), http.MethodGet, "/portfolios?userId=2", nil)
	json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Title != "theirs" {
		t.Fatalf("admin filter failed: %+v", items)
	}
}

func TestPortfolioUpdate(t *testing.T) {
	t.Run("Owner", func(t *testing.T) {
		m := mock.NewMocks()
		seedPortfolio(t, m, 1, "old")
		r := newPortfoliosRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPut, "/portfolios/1", map[string]any{"title": "new"})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if m.Portfolios.Stored[0].Title != "new" {
			t.Fatalf("title not updated: %+v", m.Portfolios.Stored[0])
		}
	})

	t.Run("Foreign", func(t *testing.T) {
		m := mock.NewMocks()
		seedPortfolio(t, m, 2, "theirs")
		r := newPortfoliosRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPut, "/portfolios/1", map[string]any{"title": "hijack"})
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		m := mock.NewMocks()
		r := newPortfoliosRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPut, "/portfolios/99", map[string]any{"title": "x"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestPortfolioDelete(t *testing.T) {
	m := mock.NewMocks()
	seedPortfolio(t, m, 1, "mine")
	seedPortfolio(t, m, 2, "theirs")
	r := newPortfoliosRouter(m, 1, models.RoleUser)

	w := doJSON(t, r, http.MethodDelete, "/portfolios/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/portfolios/2", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign portfolio must be 404, got %d", w.Code)
	}
}
