// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Persistence Contracts

// UserRepository defines the persistence operations the auth service needs.
//
// # Error Semantics
//
// Lookup methods return a not-found [apperr.AppError] when no row matches;
// the service layer translates that into the status each endpoint demands.
// The token lookups match on digest AND a still-future expiry, so an expired
// token is indistinguishable from one that never existed.
type UserRepository interface {
	// FindByID fetches a user by primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsernameOrEmail fetches the user matching either identifier.
	// Empty arguments never match (both columns are non-empty by rule).
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// FindByVerificationToken fetches the user holding this unexpired
	// email-verification token digest.
	FindByVerificationToken(ctx context.Context, tokenHash string) (*User, error)

	// FindByResetToken fetches the user holding this unexpired
	// password-reset token digest.
	FindByResetToken(ctx context.Context, tokenHash string) (*User, error)

	// Create inserts a new user. A duplicate username or email surfaces as
	// a conflict error.
	Create(ctx context.Context, user *User) error

	// Save persists the full current state of an existing user.
	Save(ctx context.Context, user *User) error
}

// TokenDenylist records revoked access-token IDs until their natural expiry.
//
// Logout writes here; the authentication middleware reads here. Entries are
// stored with a TTL equal to the token's remaining lifetime, so the set
// cleans itself up.
type TokenDenylist interface {
	// Deny revokes the token ID for the given remaining lifetime.
	Deny(ctx context.Context, jti string, ttl time.Duration) error

	// IsDenied reports whether the token ID has been revoked.
	IsDenied(ctx context.Context, jti string) (bool, error)
}
