package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/auth"
	"github.com/lionscafe/api/adapters/metrics"
	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/user"
)

// Middleware bundles the request guards: token verification, role
// checks, and ownership checks.
type Middleware struct {
	tokens  *auth.TokenService
	errors  *ErrorWriter
	metrics *metrics.Collector
	logger  zerolog.Logger
}

func NewMiddleware(tokens *auth.TokenService, errors *ErrorWriter, m *metrics.Collector, logger zerolog.Logger) *Middleware {
	return &Middleware{tokens: tokens, errors: errors, metrics: m, logger: logger}
}

// bearerToken extracts the token from an Authorization header.
// Returns "" when the header is missing or not a Bearer scheme.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (m *Middleware) verify(r *http.Request) (user.Principal, error) {
	token := bearerToken(r)
	if token == "" {
		m.metrics.AuthFailures.WithLabelValues("missing_token").Inc()
		return user.Principal{}, apperr.Authentication("No token provided")
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			m.metrics.AuthFailures.WithLabelValues("expired").Inc()
			return user.Principal{}, apperr.TokenExpired()
		}
		m.metrics.AuthFailures.WithLabelValues("invalid").Inc()
		return user.Principal{}, apperr.Authentication("Invalid token")
	}

	p := claims.Principal()
	if !p.Active {
		m.metrics.AuthFailures.WithLabelValues("deactivated").Inc()
		return user.Principal{}, apperr.Authentication("Account is deactivated")
	}
	return p, nil
}

// Authenticate requires a valid Bearer token and attaches the
// principal to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := m.verify(r)
		if err != nil {
			m.errors.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// OptionalAuthenticate attaches a principal when a valid token is
// present and proceeds unauthenticated otherwise.
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, err := m.verify(r); err == nil {
			r = r.WithContext(withPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only principals whose role is in the given set.
// Denials are audited with a single warn entry.
func (m *Middleware) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	required := strings.Join(names, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				m.errors.Write(w, r, apperr.Authentication("User not authenticated"))
				return
			}
			if !p.Allowed(roles) {
				m.logger.Warn().
					Str("user_id", p.ID).
					Str("role", string(p.Role)).
					Str("required_roles", required).
					Str("path", r.URL.Path).
					Msg("access denied")
				m.errors.Write(w, r, apperr.Authorization(
					fmt.Sprintf("Access requires one of these roles: %s", required)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// maxOwnershipBody bounds how much of a request body the ownership
// check will buffer while looking for the owner field.
const maxOwnershipBody = 1 << 20

// RequireOwnership allows a request only when the principal owns the
// addressed resource. The owning user id is resolved from route
// params, then the request body, then the query string, under the
// given field name ("userId" when empty). Admin and manager bypass.
func (m *Middleware) RequireOwnership(field string) func(http.Handler) http.Handler {
	if field == "" {
		field = "userId"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				m.errors.Write(w, r, apperr.Authentication("User not authenticated"))
				return
			}
			if p.Role.BypassesOwnership() {
				next.ServeHTTP(w, r)
				return
			}

			owner := chi.URLParam(r, field)
			if owner == "" {
				owner = ownerFromBody(r, field)
			}
			if owner == "" {
				owner = r.URL.Query().Get(field)
			}
			if owner == "" {
				m.errors.Write(w, r, apperr.Authorization("Resource ownership cannot be determined"))
				return
			}
			if owner != p.ID {
				m.logger.Warn().
					Str("user_id", p.ID).
					Str("owner_id", owner).
					Str("path", r.URL.Path).
					Msg("ownership denied")
				m.errors.Write(w, r, apperr.Authorization("You can only access your own resources"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ownerFromBody peeks at a JSON body for the owner field, restoring
// the body so the handler can still read it. Prefers the sanitized
// body when validation already ran.
func ownerFromBody(r *http.Request, field string) string {
	if body := Validated(r.Context(), LocationBody); body != nil {
		if v, ok := body[field].(string); ok {
			return v
		}
		return ""
	}
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxOwnershipBody))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	v, _ := data[field].(string)
	return v
}
