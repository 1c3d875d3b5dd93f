package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func TestGenerateAndValidate(t *testing.T) {
	token, claims, err := GenerateJWTToken("user-1", testKey, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := ValidateJWTToken(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID())
	assert.Equal(t, claims.ID, got.ID)
}

func TestValidate_Rejects(t *testing.T) {
	expired, _, err := GenerateJWTToken("user-1", testKey, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWTToken(expired, testKey)
	assert.Error(t, err)

	token, _, err := GenerateJWTToken("user-1", testKey, time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWTToken(token, "other-key")
	assert.Error(t, err)

	_, err = ValidateJWTToken("not-a-token", testKey)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := BearerToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Token abc")
	_, err = BearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer abc")
	tok, err := BearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := GetUserIDFromContext(r.Context())
	if !ok {
		id = "anonymous"
	}
	w.Write([]byte(id))
}

func TestAuthenticator_Required(t *testing.T) {
	a := NewAuthenticator(testKey, nil)
	h := a.Required(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, claims, err := GenerateJWTToken("user-1", testKey, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	a.Revoke(claims)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestAuthenticator_Optional(t *testing.T) {
	a := NewAuthenticator(testKey, nil)
	h := a.Optional(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevocationList_Cleanup(t *testing.T) {
	l := NewRevocationList()
	_, short, err := GenerateJWTToken("u", testKey, time.Minute)
	require.NoError(t, err)
	_, long, err := GenerateJWTToken("u", testKey, 48*time.Hour)
	require.NoError(t, err)

	l.Revoke(short)
	l.Revoke(long)
	l.cleanup(time.Now().Add(time.Hour))

	assert.False(t, l.IsRevoked(short.ID))
	assert.True(t, l.IsRevoked(long.ID))
}

func TestClaimsFromContext_Empty(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
