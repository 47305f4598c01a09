package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"homegraph/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-signing-secret"

func authedHandler(t *testing.T, captured **auth.UserContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		require.NoError(t, err)
		*captured = user
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAnonymousPassThrough(t *testing.T) {
	var user *auth.UserContext
	handler := Authenticate(nil, zap.NewNop())(authedHandler(t, &user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "anonymous", user.UserID)
}

func TestAuthenticateValidToken(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: testSecret})
	require.NoError(t, err)
	generator, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: testSecret})
	require.NoError(t, err)

	token, err := generator.GenerateToken("user-42", "a@b.test", []string{"admin"})
	require.NoError(t, err)

	var user *auth.UserContext
	handler := Authenticate(validator, zap.NewNop())(authedHandler(t, &user))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "user-42", user.UserID)
	assert.Equal(t, []string{"admin"}, user.Roles)
}

func TestAuthenticateRejects(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: testSecret})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})
	handler := Authenticate(validator, zap.NewNop())(next)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		other, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: "another-secret"})
		require.NoError(t, err)
		token, err := other.GenerateToken("user-42", "", nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
