package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteVerifier_ValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		require.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		require.Equal(t, "service-key", r.Header.Get("apikey"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":    "user-123",
			"email": "a@example.com",
		})
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL, "service-key")
	id, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.ID)
	assert.Equal(t, "a@example.com", id.Email)
	assert.Equal(t, "user", id.Role) // default when the provider omits it
}

func TestRemoteVerifier_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL, "service-key")
	_, err := v.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRemoteVerifier_Unconfigured(t *testing.T) {
	v := NewRemoteVerifier("", "")
	_, err := v.Verify(context.Background(), "any")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email: "a@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("top-secret")

	id, err := v.Verify(context.Background(), signToken(t, "top-secret", "user-9"))
	require.NoError(t, err)
	assert.Equal(t, "user-9", id.ID)
	assert.Equal(t, "admin", id.Role)

	_, err = v.Verify(context.Background(), signToken(t, "wrong-secret", "user-9"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = v.Verify(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	v := NewJWTVerifier("top-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("top-secret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
