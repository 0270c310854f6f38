package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	sub, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	tok, _, err := iss.Issue("user-1")
	require.NoError(t, err)

	iss.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsTokenWithoutExpiry(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("  ", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer("s", 0)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer   xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Token abc", "Bearer a b"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestDevVerifier(t *testing.T) {
	id, err := DevVerifier{}.Verify(context.Background(), "dev_alice")
	require.NoError(t, err)
	assert.Equal(t, "mock_uid_alice", id.UID)

	_, err = DevVerifier{}.Verify(context.Background(), "dev_")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = DevVerifier{}.Verify(context.Background(), "real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFirebaseVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}}})
	}))
	t.Cleanup(srv.Close)

	v, err := NewFirebaseVerifier(context.Background(), "caerus-app", srv.URL)
	require.NoError(t, err)

	sign := func(aud string, exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss":     "https://securetoken.google.com/caerus-app",
			"aud":     aud,
			"sub":     "fb-123",
			"user_id": "fb-123",
			"email":   "a@example.com",
			"iat":     time.Now().Unix(),
			"exp":     exp.Unix(),
		})
		tok.Header["kid"] = "k1"
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	id, err := v.Verify(context.Background(), sign("caerus-app", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "fb-123", Email: "a@example.com"}, id)

	_, err = v.Verify(context.Background(), sign("other-project", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), sign("caerus-app", time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Dev wrapper falls through to the real verifier.
	id, err = DevVerifier{Next: v}.Verify(context.Background(), sign("caerus-app", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "fb-123", id.UID)
}

func TestNewFirebaseVerifier_RequiresProject(t *testing.T) {
	_, err := NewFirebaseVerifier(context.Background(), "", "http://unused")
	assert.Error(t, err)
}
