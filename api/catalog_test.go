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

func newCatalogRouter(m *mock.Mocks) *mux.Router {
	h := api.NewCatalogHandler(m.Jobs)
	r := mux.NewRouter()
	r.Use(asUser(1, models.RoleUser))
	r.HandleFunc("/jobs", h.Create).Methods("POST")
	r.HandleFunc("/jobs/{id:[0-9]+}", h.Get).Methods("GET")
	return r
}

func TestCatalogCreate(t *testing.T) {
	m := mock.NewMocks()
	r := newCatalogRouter(m)

	w := doJSON(t, r, http.MethodPost, "/jobs", map[string]any{
		"platform_id": 1, "title": "Go backend engineer", "url": "https://example.com/job/7",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(m.Jobs.Stored) != 1 || m.Jobs.Stored[0].Title != "Go backend engineer" {
		t.Fatalf("posting not stored: %+v", m.Jobs.Stored)
	}

	w = doJSON(t, r, http.MethodPost, "/jobs", map[string]any{"url": "https://example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", w.Code)
	}
}

func TestCatalogGet(t *testing.T) {
	m := mock.NewMocks()
	id, err := m.Jobs.CreateJob(t.Context(), &models.Job{Title: "Scraper maintenance"})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	r := newCatalogRouter(m)

	w := doJSON(t, r, http.MethodGet, "/jobs/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != id || got.Title != "Scraper maintenance" {
		t.Fatalf("unexpected job: %+v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/jobs/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
