package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	userID uuid.UUID
	err    error
}

func (s stubDirectory) ResolveUserID(_ context.Context, _ string) (uuid.UUID, error) {
	return s.userID, s.err
}

func authedHandler(t *testing.T, want uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	handler := AuthMiddleware(stubDirectory{userID: userID})(authedHandler(t, userID))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := AuthMiddleware(stubDirectory{userID: uuid.New()})(authedHandler(t, uuid.Nil))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	handler := AuthMiddleware(stubDirectory{err: errors.New("unknown token")})(authedHandler(t, uuid.Nil))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenDirectory(t *testing.T) {
	userID := uuid.New()

	resolved, err := TokenDirectory{}.ResolveUserID(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	_, err = TokenDirectory{}.ResolveUserID(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}
