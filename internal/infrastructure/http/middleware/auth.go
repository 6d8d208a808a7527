package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/infrastructure/http/response"
)

type contextKey struct{}

// KeyValidator checks a bearer token. *auth.Authenticator satisfies it.
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (*domain.APIKey, error)
}

// Auth is HTTP middleware for bearer token authentication.
type Auth struct {
	validator KeyValidator
}

// NewAuth creates a new auth middleware.
func NewAuth(validator KeyValidator) *Auth {
	return &Auth{validator: validator}
}

// Validate is a chi middleware that checks the Authorization header.
// Expects format: "Authorization: Bearer <token>"
// On success the validated key is stored in the request context.
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			slog.WarnContext(r.Context(), "authentication failed: missing Authorization header",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "missing Authorization header")
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			slog.WarnContext(r.Context(), "authentication failed: invalid Authorization header format",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		key, err := a.validator.ValidateAPIKey(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				slog.WarnContext(r.Context(), "authentication failed: invalid or expired token",
					"path", r.URL.Path,
					"method", r.Method)
			} else {
				slog.ErrorContext(r.Context(), "authentication failed: unexpected error",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err)
			}
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		slog.DebugContext(r.Context(), "authentication successful",
			"path", r.URL.Path,
			"key_id", key.ID,
			"user_id", key.UserID)

		next.ServeHTTP(w, r.WithContext(WithAPIKey(r.Context(), key)))
	})
}

// WithAPIKey returns a copy of ctx carrying key.
func WithAPIKey(ctx context.Context, key *domain.APIKey) context.Context {
	return context.WithValue(ctx, contextKey{}, key)
}

// APIKeyFromContext returns the key stored by Validate, if any.
func APIKeyFromContext(ctx context.Context) (*domain.APIKey, bool) {
	key, ok := ctx.Value(contextKey{}).(*domain.APIKey)
	return key, ok && key != nil
}

// UserIDFromContext returns the owner of the authenticated key, or "".
func UserIDFromContext(ctx context.Context) string {
	if key, ok := APIKeyFromContext(ctx); ok {
		return key.UserID
	}
	return ""
}
