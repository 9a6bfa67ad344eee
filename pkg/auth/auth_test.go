package auth

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

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestJWTVerifier(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	token, err := SignTestToken(testSecret, "user-1", "a@example.com", time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-1", Email: "a@example.com"}, id)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, _ := NewJWTVerifier(testSecret)

	expired, _ := SignTestToken(testSecret, "user-1", "", -time.Minute)
	_, err := v.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	wrongKey, _ := SignTestToken("another-secret-another-secret-123456", "user-1", "", time.Hour)
	_, err = v.Verify(context.Background(), wrongKey)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingToken)

	wrongAud, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	_, err = v.Verify(context.Background(), wrongAud)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, _ := SignTestToken(testSecret, "", "", time.Hour)
	_, err = v.Verify(context.Background(), noSub)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestNewJWTVerifierRequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.Error(t, err)
}

type stubVerifier struct {
	id    Identity
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, string) (Identity, error) {
	s.calls++
	return s.id, s.err
}

func TestChainVerifier(t *testing.T) {
	first := &stubVerifier{err: ErrInvalidSignature}
	second := &stubVerifier{id: Identity{UserID: "user-2"}}

	id, err := NewChainVerifier(first, nil, second).Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-2", id.UserID)

	expired := &stubVerifier{err: ErrExpiredToken}
	never := &stubVerifier{}
	_, err = NewChainVerifier(expired, never).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Zero(t, never.calls)
}

func TestSupabaseVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "4d6f2a1c-8a0e-4a53-9d1f-8b2b6f0c1e11",
			"email": "user@example.com",
		})
	}))
	defer srv.Close()

	v, err := NewSupabaseVerifier(srv.URL, "anon")
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "4d6f2a1c-8a0e-4a53-9d1f-8b2b6f0c1e11", id.UserID)
	assert.Equal(t, "user@example.com", id.Email)

	_, err = v.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, Session{}.Expired(now))
	assert.False(t, Session{AccessToken: "t", ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{AccessToken: "t", ExpiresAt: now}.Expired(now))
	assert.False(t, Session{AccessToken: "t"}.Expired(now))
}
