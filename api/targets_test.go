package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/garnizeh/bidtrack/api"
	"github.com/garnizeh/bidtrack/internal/target"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository/mock"
)

const (
	tgtWeekStart = int64(1700000000000)
	tgtWeekEnd   = tgtWeekStart + 7*24*3600*1000
)

func newTargetsRouter(m *mock.Mocks, userID int64, role string) *mux.Router {
	h := api.NewTargetsHandler(target.New(m.Targets, noopNotifier{}))
	r := mux.NewRouter()
	r.Use(asUser(userID, role))
	r.HandleFunc("/targets", h.SetTarget).Methods("POST")
	r.HandleFunc("/targets/current", h.GetTarget).Methods("GET")
	return r
}

func TestSetTargetEndpoint(t *testing.T) {
	t.Run("Self", func(t *testing.T) {
		m := mock.NewMocks()
		r := newTargetsRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPost, "/targets", map[string]any{
			"week_start": tgtWeekStart, "week_end": tgtWeekEnd, "target_amount": 500.0,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var got models.WeeklyTarget
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.UserID != 1 || got.TargetAmount != 500 {
			t.Fatalf("unexpected target: %+v", got)
		}
	})

	t.Run("UserCannotSetForOthers", func(t *testing.T) {
		m := mock.NewMocks()
		r := newTargetsRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPost, "/targets", map[string]any{
			"user_id": 5, "week_start": tgtWeekStart, "week_end": tgtWeekEnd, "target_amount": 500.0,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got models.WeeklyTarget
		json.Unmarshal(w.Body.Bytes(), &got)
		if got.UserID != 1 {
			t.Fatalf("user_id in body must be ignored for non-admins, got %d", got.UserID)
		}
	})

	t.Run("AdminSetsForOther", func(t *testing.T) {
		m := mock.NewMocks()
		r := newTargetsRouter(m, 9, models.RoleAdmin)

		w := doJSON(t, r, http.MethodPost, "/targets", map[string]any{
			"user_id": 5, "week_start": tgtWeekStart, "week_end": tgtWeekEnd, "target_amount": 800.0,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got models.WeeklyTarget
		json.Unmarshal(w.Body.Bytes(), &got)
		if got.UserID != 5 {
			t.Fatalf("admin must be able to set for user 5, got %d", got.UserID)
		}
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		m := mock.NewMocks()
		r := newTargetsRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodPost, "/targets", map[string]any{
			"week_start": tgtWeekEnd, "week_end": tgtWeekStart, "target_amount": 500.0,
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for inverted window, got %d", w.Code)
		}
	})
}

func TestGetTargetEndpoint(t *testing.T) {
	seed := func(t *testing.T, m *mock.Mocks, userID int64) {
		t.Helper()
		if _, err := m.Targets.CreateTarget(t.Context(), &models.WeeklyTarget{
			UserID: userID, WeekStart: tgtWeekStart, WeekEnd: tgtWeekEnd, TargetAmount: 500,
		}); err != nil {
			t.Fatalf("seed target: %v", err)
		}
	}

	t.Run("InWindow", func(t *testing.T) {
		m := mock.NewMocks()
		seed(t, m, 1)
		r := newTargetsRouter(m, 1, models.RoleUser)

		at := tgtWeekStart + 1000
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/targets/current?at=%d", at), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got models.WeeklyTarget
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.UserID != 1 || got.TargetAmount != 500 {
			t.Fatalf("unexpected target: %+v", got)
		}
	})

	t.Run("OutOfWindow", func(t *testing.T) {
		m := mock.NewMocks()
		seed(t, m, 1)
		r := newTargetsRouter(m, 1, models.RoleUser)

		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/targets/current?at=%d", tgtWeekEnd+1), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 outside the window, got %d", w.Code)
		}
	})

	t.Run("UserIDFilterIsAdminOnly", func(t *testing.T) {
		m := mock.NewMocks()
		seed(t, m, 2)

		w := doJSON(t, newTargetsRouter(m, 1, models.RoleUser), http.MethodGet, "/targets/current?userId=2", nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for non-admin userId filter, got %d", w.Code)
		}

		at := tgtWeekStart + 1000
		w = doJSON(t, newTargetsRouter(m, 9, models.RoleAdmin), http.MethodGet, fmt.Sprintf("/targets/current?userId=2&at=%d", at), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for admin, got %d", w.Code)
		}
	})

	t.Run("BadAt", func(t *testing.T) {
		m := mock.NewMocks()
		w := doJSON(t, newTargetsRouter(m, 1, models.RoleUser), http.MethodGet, "/targets/current?at=soon", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed at, got %d", w.Code)
		}
	})
}
