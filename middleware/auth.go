package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenParser turns a bearer token into the caller's identity.
type TokenParser interface {
	Parse(raw string) (models.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// identity in the request context.
func Auth(tokens TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "Invalid authorization format")
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				msg := "Token is not valid"
				var ae *apperr.Error
				if errors.As(err, &ae) {
					msg = ae.Message
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Require runs check against the caller and answers 403 when it fails. It
// must be mounted after Auth.
func Require(check func(models.Identity) error) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			if err := check(id); err != nil {
				msg := "Forbidden"
				var ae *apperr.Error
				if errors.As(err, &ae) {
					msg = ae.Message
				}
				writeError(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
