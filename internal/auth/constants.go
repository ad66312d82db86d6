// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # One-Time Token Policy

const (
	// TemporaryTokenTTL is how long a verification or reset link stays
	// usable. Short on purpose: these links travel over email.
	TemporaryTokenTTL = 20 * time.Minute

	// TemporaryTokenBytes is the entropy of a one-time token before hex
	// encoding (20 bytes -> 40 hex characters in the emailed link).
	TemporaryTokenBytes = 20
)

// # Defaults

// DefaultAvatarURL is assigned to every new account until the user uploads
// their own picture.
const DefaultAvatarURL = "https://api.dicebear.com/9.x/identicon/svg"
