// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/auth"
)

/*
TestUser_SetPassword verifies passwords are hashed on assignment and the
plaintext never survives.
*/
func TestUser_SetPassword(t *testing.T) {
	user := &auth.User{}

	err := user.SetPassword("secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secret1")

	assert.True(t, user.IsPasswordCorrect("secret1"))
	assert.False(t, user.IsPasswordCorrect("Secret1"))
	assert.False(t, user.IsPasswordCorrect(""))
}

/*
TestUser_JSONSanitization verifies that serializing a User exposes no
credential or token material. The JSON form IS the client-facing view.
*/
func TestUser_JSONSanitization(t *testing.T) {
	expiry := time.Now().Add(20 * time.Minute)
	user := &auth.User{
		ID:           "user-1",
		Username:     "taibv",
		Email:        "taibv@identra.app",
		FullName:     "Tai Bui Van",
		RefreshToken: "refresh-token-value",
	}
	require.NoError(t, user.SetPassword("secret1"))
	user.SetVerificationToken("verification-digest", expiry)
	user.SetResetToken("reset-digest", expiry)

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	// Public fields present
	assert.Equal(t, "user-1", payload["id"])
	assert.Equal(t, "taibv", payload["username"])
	assert.Equal(t, "taibv@identra.app", payload["email"])

	// Secret material absent, under any plausible key
	serialized := string(raw)
	assert.NotContains(t, serialized, "secret1")
	assert.NotContains(t, serialized, user.PasswordHash)
	assert.NotContains(t, serialized, "refresh-token-value")
	assert.NotContains(t, serialized, "verification-digest")
	assert.NotContains(t, serialized, "reset-digest")
}

/*
TestUser_TokenLifecycle verifies the set/clear helpers for one-time tokens.
*/
func TestUser_TokenLifecycle(t *testing.T) {
	user := &auth.User{}
	expiry := time.Now().Add(auth.TemporaryTokenTTL)

	user.SetVerificationToken("digest-v", expiry)
	require.Equal(t, "digest-v", user.EmailVerificationToken)
	require.NotNil(t, user.EmailVerificationExpiry)
	assert.WithinDuration(t, expiry, *user.EmailVerificationExpiry, time.Second)

	user.ClearVerificationToken()
	assert.Empty(t, user.EmailVerificationToken)
	assert.Nil(t, user.EmailVerificationExpiry)

	user.SetResetToken("digest-r", expiry)
	require.Equal(t, "digest-r", user.ForgotPasswordToken)
	require.NotNil(t, user.ForgotPasswordExpiry)

	user.ClearResetToken()
	assert.Empty(t, user.ForgotPasswordToken)
	assert.Nil(t, user.ForgotPasswordExpiry)

	user.RefreshToken = "live-token"
	user.ClearRefreshToken()
	assert.Empty(t, user.RefreshToken)
}
