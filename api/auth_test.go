package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/bidtrack/api"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository/mock"
)

func seedUser(t *testing.T, m *mock.Mocks, email, password, role string, blocked bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := m.Users.CreateUser(t.Context(), &models.User{
		Name: "Seeded", Email: email, Role: role, Blocked: blocked, PasswordHash: string(hash),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		prepare    func(t *testing.T, m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Signup_InvalidRequest",
			method:     http.MethodPost,
			path:       "/signup",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_Success",
			method:     http.MethodPost,
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				if ar.Token == "" {
					t.Fatalf("empty token")
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims := tok.Claims.(jwt.MapClaims)
				if claims["role"] != models.RoleUser {
					t.Fatalf("signup must issue the user role, got %v", claims["role"])
				}
			},
		},
		{
			name:   "Signup_DuplicateEmail",
			method: http.MethodPost,
			path:   "/signup",
			body:   map[string]string{"name": "Dup", "email": "dup@example.com", "password": "pw"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				m.Users.CreateErr = fmt.Errorf("unique constraint")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Signin_UnknownEmail",
			method:     http.MethodPost,
			path:       "/signin",
			body:       map[string]string{"email": "nobody@example.com", "password": "pw"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Signin_WrongPassword",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"email": "bob@example.com", "password": "wrong"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "bob@example.com", "right", models.RoleUser, false)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Signin_Blocked",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"email": "blocked@example.com", "password": "pw"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "blocked@example.com", "pw", models.RoleUser, true)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "Signin_Success",
			method: http.MethodPost,
			path:   "/signin",
			body:   map[string]string{"email": "carol@example.com", "password": "pw"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "carol@example.com", "pw", models.RoleAdmin, false)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims := tok.Claims.(jwt.MapClaims)
				if claims["role"] != models.RoleAdmin {
					t.Fatalf("expected admin role claim, got %v", claims["role"])
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mock.NewMocks()
			if tc.prepare != nil {
				tc.prepare(t, m)
			}

			h := api.NewAuthHandler(m.Users, secret, tokenDur)
			r := mux.NewRouter()
			r.HandleFunc("/signup", h.Signup).Methods("POST")
			r.HandleFunc("/signin", h.Signin).Methods("POST")
			r.HandleFunc("/signout", h.Signout).Methods("POST")

			var body io.Reader
			switch v := tc.body.(type) {
			case string:
				body = bytes.NewBufferString(v)
			default:
				b, _ := json.Marshal(v)
				body = bytes.NewBuffer(b)
			}

			req := httptest.NewRequest(tc.method, tc.path, body)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()
			if res.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, res.StatusCode)
			}
			if tc.checkBody != nil {
				b, _ := io.ReadAll(res.Body)
				tc.checkBody(t, b)
			}
		})
	}
}

func TestSignout(t *testing.T) {
	m := mock.NewMocks()
	h := api.NewAuthHandler(m.Users, "secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	w := httptest.NewRecorder()
	h.Signout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
