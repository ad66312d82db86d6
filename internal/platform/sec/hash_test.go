// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/sec"
)

/*
TestHashPassword verifies bcrypt hashing round-trips and never stores plaintext.
*/
func TestHashPassword(t *testing.T) {
	password := "secret1"

	hashed, err := sec.HashPassword(password)
	require.NoError(t, err)

	// The hash must never contain or equal the plaintext.
	assert.NotEqual(t, password, hashed)
	assert.NotContains(t, hashed, password)
	assert.True(t, strings.HasPrefix(hashed, "$2"))

	// Round-trip verification
	assert.True(t, sec.CheckPasswordHash(password, hashed))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hashed))
}

/*
TestHashPassword_UniqueSalts verifies two hashes of the same input differ.
*/
func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	second, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	// bcrypt embeds a random salt, so hashes must not collide.
	assert.NotEqual(t, first, second)
}

/*
TestGenerateSecureToken verifies token length and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(20)
	require.NoError(t, err)

	second, err := sec.GenerateSecureToken(20)
	require.NoError(t, err)

	// 20 random bytes hex-encode to 40 characters.
	assert.Len(t, first, 40)
	assert.Len(t, second, 40)
	assert.NotEqual(t, first, second)
}

/*
TestHashToken verifies the digest is deterministic and input-sensitive.
*/
func TestHashToken(t *testing.T) {
	raw := "some-one-time-token"

	digest := sec.HashToken(raw)

	// SHA-256 hex digest is always 64 characters.
	assert.Len(t, digest, 64)
	assert.NotEqual(t, raw, digest)

	// Deterministic: lookups by digest depend on this.
	assert.Equal(t, digest, sec.HashToken(raw))
	assert.NotEqual(t, digest, sec.HashToken(raw+"x"))
}
