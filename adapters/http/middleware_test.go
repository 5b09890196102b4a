package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	authadapter "github.com/lionscafe/api/adapters/auth"
	"github.com/lionscafe/api/adapters/metrics"
	"github.com/lionscafe/api/domain/user"
)

func newTestMiddleware(t *testing.T) (*Middleware, *authadapter.TokenService, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs)
	tokens := authadapter.NewTokenService("0123456789abcdef0123456789abcdef", time.Hour)
	col := metrics.NewWithRegistry(prometheus.NewRegistry())
	return NewMiddleware(tokens, NewErrorWriter(logger, false), col, logger), tokens, logs
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer  spaced ", "spaced"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(r); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)

	var principal *user.Principal
	handler := mw.OptionalAuthenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFrom(r.Context()); ok {
			principal = &p
		}
		w.WriteHeader(http.StatusOK)
	}))

	// No token: proceeds unauthenticated.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if principal != nil {
		t.Fatal("expected no principal without a token")
	}

	// Garbage token: still proceeds, still unauthenticated.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if principal != nil {
		t.Fatal("expected no principal with a bad token")
	}

	// Valid token: principal attached.
	token, _, err := tokens.Generate(user.User{
		ID: "u1", Email: "u1@example.com", Role: user.RoleStaff, Active: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if principal == nil || principal.ID != "u1" {
		t.Fatalf("principal = %v, want u1", principal)
	}
}

func TestRequireRole_NoPrincipal(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)

	handler := mw.RequireRole(user.RoleAdmin)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User not authenticated") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequireOwnership_Unresolvable(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)

	r := chi.NewRouter()
	r.With(injectPrincipal(user.Principal{ID: "u1", Role: user.RoleCustomer, Active: true}),
		mw.RequireOwnership("")).
		Post("/things", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	// No params, empty body, no query: ownership cannot be resolved.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Resource ownership cannot be determined") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequireOwnership_BodyAndQuery(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)

	r := chi.NewRouter()
	r.With(injectPrincipal(user.Principal{ID: "u1", Role: user.RoleCustomer, Active: true}),
		mw.RequireOwnership("userId")).
		Post("/things", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	t.Run("matching body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/things",
			strings.NewReader(`{"userId":"u1"}`))
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("foreign body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/things",
			strings.NewReader(`{"userId":"someone-else"}`))
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("matching query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/things?userId=u1", nil)
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

// injectPrincipal is a test shim standing in for Authenticate.
func injectPrincipal(p user.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}
