package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))
	issued := time.Now()

	token, err := svc.Issue(map[string]interface{}{
		"email":       "finder@example.com",
		"displayName": "Finder",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "finder@example.com", claims["email"])
	assert.Equal(t, "Finder", claims["displayName"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok, "exp claim missing")
	assert.InDelta(t, issued.Add(time.Hour).Unix(), int64(exp), 5)
}

func TestIssueRequiresEmail(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	for name, payload := range map[string]map[string]interface{}{
		"nil payload":      nil,
		"no email":         {"displayName": "Finder"},
		"empty email":      {"email": ""},
		"whitespace email": {"email": "   "},
		"non-string email": {"email": 42},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Issue(payload)
			assert.ErrorIs(t, err, ErrEmailRequired)
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))
	other := NewTokenService([]byte("other-secret"))

	token, err := other.Issue(map[string]interface{}{"email": "finder@example.com"})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	svc := NewTokenService(secret)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "finder@example.com",
		"exp":   jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	token, err := expired.SignedString(secret)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "finder@example.com",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))
	_, err := svc.Verify("not.a.token")
	assert.Error(t, err)
}
