package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.GenerateJWT("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := NewService("secret-a").GenerateJWT("user-123")
	require.NoError(t, err)

	_, err = NewService("secret-b").ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	svc := NewService("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	tokenStr, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateJWT(tokenStr)
	assert.Error(t, err)
}

func TestValidateJWT_Malformed(t *testing.T) {
	_, err := NewService("test-secret").ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	svc := NewService("test-secret")

	var handlerCalled bool
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		seenUserID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := svc.Middleware()(next)

	t.Run("no header", func(t *testing.T) {
		handlerCalled = false
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, handlerCalled)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, handlerCalled)
	})

	t.Run("token signed under another secret", func(t *testing.T) {
		handlerCalled = false
		foreign, err := NewService("other-secret").GenerateJWT("user-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+foreign)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, handlerCalled)
	})

	t.Run("valid token", func(t *testing.T) {
		handlerCalled = false
		token, err := svc.GenerateJWT("user-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, handlerCalled)
		assert.Equal(t, "user-123", seenUserID)
	})
}
