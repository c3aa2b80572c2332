package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserDirectory resolves a bearer token to a user id. The HTTP layer does
// not care how; token validation lives behind this interface.
type UserDirectory interface {
	ResolveUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthMiddleware extracts the bearer token, resolves it through the user
// directory, and stores the user id in the request context.
func AuthMiddleware(users UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || token == r.Header.Get("Authorization") {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			userID, err := users.ResolveUserID(r.Context(), token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// TokenDirectory is the development directory: the token is the user id
// itself. Production deployments plug in a real identity provider.
type TokenDirectory struct{}

func (TokenDirectory) ResolveUserID(_ context.Context, token string) (uuid.UUID, error) {
	return uuid.Parse(token)
}
