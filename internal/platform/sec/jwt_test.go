// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/sec"
)

func newTestTokenService() *sec.TokenService {
	return sec.NewTokenService(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		15*time.Minute,
		720*time.Hour,
		"identra.test",
	)
}

/*
TestTokenService_AccessToken_RoundTrip verifies generation and verification
of access tokens, including identity claims and a unique jti.
*/
func TestTokenService_AccessToken_RoundTrip(t *testing.T) {
	service := newTestTokenService()

	tokenString, err := service.GenerateAccessToken("user-1", "taibv", "taibv@identra.app")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.VerifyAccessToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "taibv", claims.Username)
	assert.Equal(t, "taibv@identra.app", claims.Email)
	assert.NotEmpty(t, claims.ID, "every access token needs a jti for revocation")

	// Two tokens for the same user must carry distinct jti values.
	secondToken, err := service.GenerateAccessToken("user-1", "taibv", "taibv@identra.app")
	require.NoError(t, err)
	secondClaims, err := service.VerifyAccessToken(secondToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, secondClaims.ID)
}

/*
TestTokenService_RefreshToken_RoundTrip verifies refresh token generation
and subject extraction.
*/
func TestTokenService_RefreshToken_RoundTrip(t *testing.T) {
	service := newTestTokenService()

	tokenString, err := service.GenerateRefreshToken("user-42")
	require.NoError(t, err)

	userID, err := service.VerifyRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

/*
TestTokenService_SeparateSecrets verifies that access and refresh tokens are
not interchangeable: each kind verifies only against its own secret.
*/
func TestTokenService_SeparateSecrets(t *testing.T) {
	service := newTestTokenService()

	accessToken, err := service.GenerateAccessToken("user-1", "taibv", "taibv@identra.app")
	require.NoError(t, err)

	refreshToken, err := service.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	// An access token presented as a refresh token must fail, and vice versa.
	_, err = service.VerifyRefreshToken(accessToken)
	assert.Error(t, err)

	_, err = service.VerifyAccessToken(refreshToken)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignSignature verifies tokens signed with a
different secret are rejected.
*/
func TestTokenService_RejectsForeignSignature(t *testing.T) {
	service := newTestTokenService()
	foreign := sec.NewTokenService("other-access", "other-refresh", 15*time.Minute, time.Hour, "identra.test")

	tokenString, err := foreign.GenerateAccessToken("user-1", "taibv", "taibv@identra.app")
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(tokenString)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsExpired verifies expired tokens fail verification.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	expired := sec.NewTokenService(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		-1*time.Minute, // already expired at issue time
		-1*time.Minute,
		"identra.test",
	)

	accessToken, err := expired.GenerateAccessToken("user-1", "taibv", "taibv@identra.app")
	require.NoError(t, err)
	_, err = expired.VerifyAccessToken(accessToken)
	assert.Error(t, err)

	refreshToken, err := expired.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	_, err = expired.VerifyRefreshToken(refreshToken)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsGarbage verifies malformed input fails cleanly.
*/
func TestTokenService_RejectsGarbage(t *testing.T) {
	service := newTestTokenService()

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.VerifyAccessToken(input)
		assert.Error(t, err)

		_, err = service.VerifyRefreshToken(input)
		assert.Error(t, err)
	}
}
