package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyTokenPair(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	access, refresh, expiresAt, err := m.GenerateTokenPair("0xAbC123")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.Greater(t, expiresAt, time.Now().Unix())

	claims, err := m.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "0xAbC123", claims.WalletAddress)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	claims, err = m.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	access, refresh, _, err := m.GenerateTokenPair("0xAbC123")
	require.NoError(t, err)

	// access token不能当refresh用，反之亦然
	_, err = m.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = m.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, time.Hour)

	access, _, _, err := m.GenerateTokenPair("0xAbC123")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	access, _, _, err := m.GenerateTokenPair("0xAbC123")
	require.NoError(t, err)

	other := NewJWTManager("another-secret", time.Hour, 24*time.Hour)
	_, err = other.VerifyAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
