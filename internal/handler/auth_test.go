package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chetan-code/taskrooms/internal/handler"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := models.User{ID: 7, Email: "alice@example.com"}
	token, err := handler.GenerateJWT(user)
	require.NoError(t, err)

	protected := handler.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := handler.CurrentUser(r)
		require.True(t, ok)
		assert.Equal(t, 7, claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid session cookie passes identity through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing cookie redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("garbage token redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "not-a-jwt"})
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("token signed with another key rejected", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "rotated-secret")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := handler.GenerateJWT(models.User{ID: 3, Email: "bob@example.com"})
	require.NoError(t, err)

	claims, err := handler.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
}
