// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package identity normalizes user-supplied identifiers before storage or lookup.
//
// # Usage
//
// Usernames and email addresses are unique, case-insensitive keys in the
// account table. Every code path that touches them (registration, login,
// password recovery) must normalize through this package first, so that
// "Alice@X.com" and "alice@x.com " resolve to the same record.
package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeUsername canonicalizes a username for storage and comparison.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Applies Unicode NFKC normalization (compatibility forms collapse:
// full-width "ａｂｃ" → "abc").
// 3. Lowercases.
func NormalizeUsername(username string) string {
	trimmed := strings.TrimSpace(username)
	normalized := norm.NFKC.String(trimmed)
	return strings.ToLower(normalized)
}

// NormalizeEmail canonicalizes an email address for storage and comparison.
//
// The full address is lowercased. Technically the local part of an address is
// case-sensitive per RFC 5321, but no mainstream provider honors that, and a
// case-insensitive unique key prevents duplicate-account confusion.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	normalized := norm.NFKC.String(trimmed)
	return strings.ToLower(normalized)
}
