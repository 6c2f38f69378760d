package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("s3cret", 0)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())

	token, err := svc.Issue(map[string]interface{}{"email": "a@example.com", "role": "staff"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	payload, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", payload["email"])
	assert.Equal(t, "staff", payload["role"])
	assert.Contains(t, payload, "exp")

	id, err := DecodeIdentity(payload)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", id.Email)
}

func TestIssueOverridesExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	svc := NewTokenService("s3cret", time.Hour)
	svc.now = func() time.Time { return now }

	token, err := svc.Issue(map[string]interface{}{"exp": 1})
	require.NoError(t, err)
	payload, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, float64(now.Add(time.Hour).Unix()), payload["exp"])
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := NewTokenService("", 0).Issue(map[string]interface{}{"email": "a@example.com"})
	assert.True(t, errors.Is(err, ErrNoSecret))
}

func TestVerifyEmpty(t *testing.T) {
	_, err := NewTokenService("s3cret", 0).Verify("")
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.True(t, IsUnauthenticated(err))
	assert.False(t, IsForbidden(err))
}

func TestVerifyMalformed(t *testing.T) {
	_, err := NewTokenService("s3cret", 0).Verify("not.a.jwt")
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.True(t, IsUnauthenticated(err))
}

func TestVerifyExpired(t *testing.T) {
	svc := NewTokenService("s3cret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.Issue(map[string]interface{}{"email": "a@example.com"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.True(t, errors.Is(err, ErrExpired))
	assert.True(t, IsForbidden(err))
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenService("one", 0).Issue(map[string]interface{}{"email": "a@example.com"})
	require.NoError(t, err)

	_, err = NewTokenService("two", 0).Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
	assert.True(t, IsForbidden(err))
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"email": "a@example.com", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewTokenService("s3cret", 0).Verify(token)
	assert.True(t, IsForbidden(err))
}

func TestDecodeIdentityWeakTypes(t *testing.T) {
	id, err := DecodeIdentity(map[string]interface{}{"email": 42, "other": true})
	require.NoError(t, err)
	assert.Equal(t, "42", id.Email)

	id, err = DecodeIdentity(map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, id.Email)
}
