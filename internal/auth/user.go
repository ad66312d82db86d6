// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and credential lifecycle.

It defines the core domain entity (User) and the logic for registration,
authentication, email verification, password recovery, and JWT session
refresh.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies beyond the security primitives and encapsulates all
business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/taibuivan/identra/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
//
// # Rules
//   - Username and Email are unique, lowercase, and trimmed.
//   - PasswordHash is generated exclusively via [User.SetPassword].
//   - One-time token fields hold SHA-256 digests, never raw values.
//   - JSON serialization IS the sanitized view: every secret and token
//     field carries a `json:"-"` tag, so a User can be returned to a
//     client directly without a separate scrubbing step.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	PasswordHash    string `json:"-"` // Explicitly omitted from JSON for security.
	FullName        string `json:"fullName,omitempty"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`

	// RefreshToken is the single currently-valid refresh token. Rotation
	// overwrites it, implicitly invalidating whatever was issued before.
	RefreshToken string `json:"-"`

	// Email verification one-time token (digest + absolute expiry).
	// Present only while a verification is outstanding.
	EmailVerificationToken  string     `json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`

	// Password reset one-time token (digest + absolute expiry).
	// Present only while a reset is outstanding.
	ForgotPasswordToken  string     `json:"-"`
	ForgotPasswordExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPassword replaces the stored credential with the bcrypt hash of the
// given plaintext.
//
// Hashing happens here and nowhere else: there is no save-time hook that
// rehashes on field dirtiness, so updating unrelated fields can never
// accidentally rehash an already-hashed value.
func (user *User) SetPassword(plainTextPassword string) error {
	hashed, err := sec.HashPassword(plainTextPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return nil
}

// IsPasswordCorrect reports whether the plaintext matches the stored hash.
func (user *User) IsPasswordCorrect(plainTextPassword string) bool {
	return sec.CheckPasswordHash(plainTextPassword, user.PasswordHash)
}

// SetVerificationToken stages a pending email verification.
func (user *User) SetVerificationToken(tokenHash string, expiry time.Time) {
	user.EmailVerificationToken = tokenHash
	user.EmailVerificationExpiry = &expiry
}

// ClearVerificationToken removes the pending verification state. Called on
// successful verification so the token has exactly one logical use.
func (user *User) ClearVerificationToken() {
	user.EmailVerificationToken = ""
	user.EmailVerificationExpiry = nil
}

// SetResetToken stages a pending password reset.
func (user *User) SetResetToken(tokenHash string, expiry time.Time) {
	user.ForgotPasswordToken = tokenHash
	user.ForgotPasswordExpiry = &expiry
}

// ClearResetToken removes the pending reset state.
func (user *User) ClearResetToken() {
	user.ForgotPasswordToken = ""
	user.ForgotPasswordExpiry = nil
}

// ClearRefreshToken revokes the current refresh token. Password changes and
// resets call this to force re-authentication everywhere.
func (user *User) ClearRefreshToken() {
	user.RefreshToken = ""
}

// # Field Identifiers

// Global field names for validation and payload mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "fullName"
	FieldToken           = "token"
	FieldRefreshToken    = "refreshToken"
	FieldAccessToken     = "accessToken"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldUser            = "user"
)
