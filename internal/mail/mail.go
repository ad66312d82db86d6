// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail implements the outbound notification gateway.

It renders branded transactional emails (verification links, password reset
links) into HTML + plaintext alternatives and delivers them over SMTP.

# Architecture

  - Mailer: the delivery contract injected into the auth service.
  - Templates: deterministic rendering from structured [Content].
  - SendPolicy: every call site declares how a delivery failure must be
    treated, instead of scattering divergent try/catch logic.
*/
package mail

import "context"

// Message is a fully-addressed, renderable transactional email.
type Message struct {
	// To is the recipient address.
	To string

	// Subject is the subject line.
	Subject string

	// Content is the structured body rendered by the template engine.
	Content Content
}

// Content is the structured body of a transactional email.
//
// The shape mirrors the classic "transactional email" layout: greeting,
// intro paragraph, a single call-to-action button, and an outro paragraph.
type Content struct {
	// Name is the recipient's display name used in the greeting.
	Name string

	// Intro is the opening paragraph.
	Intro string

	// ActionInstructions explains what the button does.
	ActionInstructions string

	// ButtonText is the call-to-action label.
	ButtonText string

	// ButtonLink is the call-to-action URL. The raw one-time token travels
	// inside this link and nowhere else.
	ButtonLink string

	// ButtonColor is the CSS background color of the button.
	ButtonColor string

	// Outro is the closing paragraph.
	Outro string
}

// Mailer is the delivery contract consumed by the auth service.
type Mailer interface {
	// Send renders and delivers the message. A single attempt, no retries:
	// the caller's [SendPolicy] decides what a failure means.
	Send(ctx context.Context, message Message) error
}

// SendPolicy declares how a call site treats a delivery failure.
//
// Registration must not fail an otherwise-valid account creation just
// because outbound mail is degraded, whereas an explicit "send me a link"
// action is meaningless if delivery fails. Making the policy an explicit
// parameter keeps that asymmetry in one visible place.
type SendPolicy int

const (
	// PolicyIgnore logs the failure and reports success to the caller.
	PolicyIgnore SendPolicy = iota

	// PolicyReportAndRollback surfaces the failure AND requires the caller
	// to undo any state staged for the email (e.g. a pending reset token).
	PolicyReportAndRollback

	// PolicyPropagate surfaces the failure to the caller unchanged.
	PolicyPropagate
)

// VerificationContent builds the email body for a verify-your-email link.
func VerificationContent(name, verificationURL string) Content {
	return Content{
		Name:               name,
		Intro:              "Welcome to Identra! We're thrilled to have you on board.",
		ActionInstructions: "To verify your email, please click the button below:",
		ButtonText:         "Verify Your Email",
		ButtonLink:         verificationURL,
		ButtonColor:        "#22BC66",
		Outro:              "Need help or have questions? Just reply to this email.",
	}
}

// PasswordResetContent builds the email body for a reset-password link.
func PasswordResetContent(name, resetURL string) Content {
	return Content{
		Name:               name,
		Intro:              "You requested to reset your password.",
		ActionInstructions: "Click the button below to reset it:",
		ButtonText:         "Reset Your Password",
		ButtonLink:         resetURL,
		ButtonColor:        "#DC4D2F",
		Outro:              "If you did not request this, you can safely ignore this email.",
	}
}
