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

func newUsersRouter(m *mock.Mocks, callerID int64) *mux.Router {
	h := api.NewUsersHandler(m.Users)
	r := mux.NewRouter()
	r.Use(asUser(callerID, models.RoleAdmin))
	r.HandleFunc("/users", h.List).Methods("GET")
	r.HandleFunc("/users/{id}/blocked", h.SetBlocked).Methods("PUT")
	return r
}

func TestUserList(t *testing.T) {
	m := mock.NewMocks()
	m.Users.CreateUser(t.Context(), &models.User{
		Name: "Alice", Email: "alice@example.com", Role: models.RoleAdmin, PasswordHash: "secret",
	})
	m.Users.CreateUser(t.Context(), &models.User{
		Name: "Bob", Email: "bob@example.com", Role: models.RoleUser, PasswordHash: "secret",
	})

	w := doJSON(t, newUsersRouter(m, 1), http.MethodGet, "/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var items []models.User
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 users, got %d", len(items))
	}
	for _, u := range items {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked for %s", u.Email)
		}
	}
}

func TestSetBlocked(t *testing.T) {
	m := mock.NewMocks()
	m.Users.CreateUser(t.Context(), &models.User{
		Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: "h",
	})
	m.Users.CreateUser(t.Context(), &models.User{
		Name: "Bob", Email: "bob@example.com", Role: models.RoleUser, PasswordHash: "h",
	})
	r := newUsersRouter(m, 1)

	w := doJSON(t, r, http.MethodPut, "/users/2/blocked", map[string]any{"blocked": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	u, _ := m.Users.GetUserByID(t.Context(), 2)
	if !u.Blocked {
		t.Fatalf("user not blocked: %+v", u)
	}

	w = doJSON(t, r, http.MethodPut, "/users/2/blocked", map[string]any{"blocked": false})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 unblocking, got %d", w.Code)
	}
	u, _ = m.Users.GetUserByID(t.Context(), 2)
	if u.Blocked {
		t.Fatalf("user still blocked: %+v", u)
	}

	w = doJSON(t, r, http.MethodPut, "/users/1/blocked", map[string]any{"blocked": true})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blocking own account must be 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/users/99/blocked", map[string]any{"blocked": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}
