package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHMACTokenService(t *testing.T, accessTTL time.Duration) TokenService {
	t.Helper()

	svc, err := NewTokenService(
		accessTTL,
		24*time.Hour,
		"vasooli-test",
		"vasooli-test-clients",
		false,
		"",
		"",
		"test-secret-key-with-enough-length-0123456789",
	)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", false, "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret key is required")
}

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	access, refresh, err := svc.GenerateTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), accessClaims.CustomerID)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.NotEmpty(t, accessClaims.TokenID)
	assert.True(t, accessClaims.ExpiresAt.After(accessClaims.IssuedAt))

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, accessClaims.TokenID, refreshClaims.TokenID)
}

func TestAccessTokenTTLFollowsConfiguration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, newHMACTokenService(t, 15*time.Minute).AccessTokenTTL())
	assert.Equal(t, time.Hour, newHMACTokenService(t, time.Hour).AccessTokenTTL())
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	_, err := svc.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	access, _, err := svc.GenerateTokens(1)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = svc.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)
	other, err := NewTokenService(time.Hour, 24*time.Hour, "vasooli-test", "vasooli-test-clients",
		false, "", "", "a-completely-different-secret-key-9876543210")
	require.NoError(t, err)

	access, _, err := svc.GenerateTokens(1)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newHMACTokenService(t, -time.Minute)

	access, _, err := svc.GenerateTokens(1)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	_, refresh, err := svc.GenerateTokens(7)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.CustomerID)
	assert.Equal(t, "access", claims.TokenType)

	claims, err = svc.ValidateToken(newRefresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	access, _, err := svc.GenerateTokens(7)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a refresh token")
}

func TestRevokeToken(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	access, refresh, err := svc.GenerateTokens(3)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(access))

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The refresh token has its own jti and is still usable
	_, err = svc.ValidateToken(refresh)
	assert.NoError(t, err)

	// Revoking twice is a no-op
	assert.NoError(t, svc.RevokeToken(access))
}
