// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/mail"
)

var testProduct = mail.Product{
	Name: "Identra",
	URL:  "https://identra.app",
}

/*
TestRender_Verification verifies the verification email renders both bodies
with the action link present.
*/
func TestRender_Verification(t *testing.T) {
	content := mail.VerificationContent("taibv", "https://identra.app/api/v1/auth/verify-email/tok123")

	html, text, err := mail.Render(testProduct, content)
	require.NoError(t, err)

	// Both alternatives must carry the greeting and the action link.
	assert.Contains(t, html, "Hi taibv,")
	assert.Contains(t, html, "https://identra.app/api/v1/auth/verify-email/tok123")
	assert.Contains(t, html, "Verify Your Email")
	assert.Contains(t, html, "#22BC66")

	assert.Contains(t, text, "Hi taibv,")
	assert.Contains(t, text, "https://identra.app/api/v1/auth/verify-email/tok123")
}

/*
TestRender_PasswordReset verifies the reset email renders with its own
button styling and link.
*/
func TestRender_PasswordReset(t *testing.T) {
	content := mail.PasswordResetContent("taibv", "https://identra.app/api/v1/auth/reset-password/tok456")

	html, text, err := mail.Render(testProduct, content)
	require.NoError(t, err)

	assert.Contains(t, html, "Reset Your Password")
	assert.Contains(t, html, "#DC4D2F")
	assert.Contains(t, html, "tok456")
	assert.Contains(t, text, "tok456")
}

/*
TestRender_EscapesHTML verifies user-controlled values cannot inject markup
into the HTML body.
*/
func TestRender_EscapesHTML(t *testing.T) {
	content := mail.VerificationContent("<script>alert(1)</script>", "https://identra.app/v")

	html, _, err := mail.Render(testProduct, content)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
}

/*
TestRender_TextOnlyHeader verifies rendering works without a logo URL.
*/
func TestRender_TextOnlyHeader(t *testing.T) {
	content := mail.VerificationContent("taibv", "https://identra.app/v")

	html, _, err := mail.Render(testProduct, content)
	require.NoError(t, err)

	// Without a LogoURL the header falls back to the product name link.
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, ">Identra</a>")
}
