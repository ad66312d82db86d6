// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/identra/internal/mail"
	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/ctxutil"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/pkg/identity"
	"github.com/taibuivan/identra/pkg/uuidv7"
)

// TokenProvider defines the contract for issuing and verifying JWT pairs.
type TokenProvider interface {
	// GenerateAccessToken creates a signed short-lived JWT carrying the
	// user's identity claims.
	GenerateAccessToken(userID, username, email string) (string, error)

	// GenerateRefreshToken creates a signed long-lived JWT carrying only
	// the user ID.
	GenerateRefreshToken(userID string) (string, error)

	// VerifyRefreshToken validates signature and expiry, returning the
	// subject user ID.
	VerifyRefreshToken(tokenString string) (string, error)

	// AccessTokenTTL and RefreshTokenTTL expose the configured lifetimes
	// so cookies can expire in lockstep with the tokens they carry.
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenDenylist  TokenDenylist
	tokenProvider  TokenProvider
	mailer         mail.Mailer

	// appURL is the public base URL embedded in emailed links.
	appURL string
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	denylist TokenDenylist,
	tokenProv TokenProvider,
	mailer mail.Mailer,
	appURL string,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenDenylist:  denylist,
		tokenProvider:  tokenProv,
		mailer:         mailer,
		appURL:         appURL,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Register validates, hashes, and persists a brand new user account, then
// dispatches the verification email.
//
// # Returns
//   - A pointer to the newly created [*User], sanitized for the client.
//   - Returns [apperr.Conflict] if email or username already exists.
//
// # Business Rules
//   - Usernames and emails are unique, case-normalized, and trimmed.
//   - Accounts start unverified with a 20-minute verification link.
//   - A failed verification email never fails the registration itself.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Normalization & Uniqueness ─────────────────────────────────────

	username := identity.NormalizeUsername(input.Username)
	email := identity.NormalizeEmail(input.Email)

	// A successful lookup on either identifier means the account exists.
	_, err := service.userRepository.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperr.Conflict("User with email or username already exists")
	}

	// ── 2. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:              uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:        username,
		Email:           email,
		FullName:        input.FullName,
		AvatarURL:       DefaultAvatarURL,
		IsEmailVerified: false,
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Verification Token ─────────────────────────────────────────────

	token, err := newTemporaryToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_verification_token_failed: %w", err)
	}
	user.SetVerificationToken(token.hash, token.expiresAt)

	// ── 4. Persistence ────────────────────────────────────────────────────

	// The insert is the authoritative uniqueness check: a concurrent
	// registration racing past step 1 surfaces here as a Conflict.
	if err := service.userRepository.Create(ctx, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// ── 5. Verification Email ─────────────────────────────────────────────

	// Rule: registration succeeds even when outbound mail is down. The user
	// can request a resend once logged in. PolicyIgnore swallows the failure,
	// so there is no error to handle here.
	_ = service.dispatchEmail(ctx, mail.PolicyIgnore, mail.Message{
		To:      user.Email,
		Subject: "Verify your email",
		Content: mail.VerificationContent(user.Username, service.verificationURL(token.raw)),
	}, nil)

	return user, nil
}

// LoginInput defines credentials for an authentication attempt. Either
// Username or Email identifies the account.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// Login validates user credentials and issues a fresh token pair.
//
// # Returns
//   - A pointer to [LoginSession] containing both tokens and the user.
//   - Returns [apperr.BadRequest] for every failure mode: missing
//     identifier, unknown account, and wrong password alike.
//
// # Flow
//  1. Lookup user by username or email.
//  2. Verify password hash using bcrypt.
//  3. Issue and persist a new token pair (rotation).
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	if input.Username == "" && input.Email == "" {
		return nil, apperr.BadRequest("Either username or email is required")
	}

	user, err := service.userRepository.FindByUsernameOrEmail(ctx,
		identity.NormalizeUsername(input.Username),
		identity.NormalizeEmail(input.Email),
	)
	if err != nil {
		return nil, apperr.BadRequest("User does not exist")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// bcrypt comparison is constant-time, preventing timing attacks.
	if !user.IsPasswordCorrect(input.Password) {
		return nil, apperr.BadRequest("Invalid credentials")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// Logout revokes the caller's session.
//
// # Flow
//  1. Clear the stored refresh token so it can never rotate again.
//  2. Deny the presented access token's jti for its remaining lifetime, so
//     the still-valid JWT stops working immediately.
func (service *Service) Logout(ctx context.Context, userID, accessTokenID string, accessTokenExpiry time.Time) error {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.ClearRefreshToken()
	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	if err := service.tokenDenylist.Deny(ctx, accessTokenID, time.Until(accessTokenExpiry)); err != nil {
		return fmt.Errorf("auth_service_logout_denylist_failed: %w", err)
	}

	return nil
}

// RefreshSession implements refresh token rotation.
//
// The presented token must match the single token stored on the account
// byte for byte. Rotation overwrites the stored value, so a replayed older
// token fails this check even while its signature is still valid.
//
// # Returns
//   - A fresh [LoginSession] on success.
//   - Returns [apperr.Unauthorized] for every failure mode.
func (service *Service) RefreshSession(ctx context.Context, refreshToken string) (*LoginSession, error) {
	// ── 1. Verify Signature & Expiry ──────────────────────────────────────

	userID, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Rotation Check ─────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, apperr.Unauthorized("Refresh token is expired or already used")
	}

	// ── 3. Issue New Pair ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// VerifyEmail consumes an emailed verification token and marks the account
// verified.
//
// # Returns
//
// Returns [apperr.BadRequest] with an identical message whether the token is
// unknown, already used, or expired. The distinction would only help an
// attacker probing for valid tokens.
func (service *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	user, err := service.userRepository.FindByVerificationToken(ctx, sec.HashToken(rawToken))
	if err != nil {
		return apperr.BadRequest("Token is invalid or expired")
	}

	user.IsEmailVerified = true
	user.ClearVerificationToken() // Single use: the token dies with this write.

	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	return nil
}

// ResendVerification issues a fresh verification token for the
// authenticated user and emails it.
//
// # Returns
//   - Returns [apperr.Conflict] if the email is already verified.
//   - Returns [apperr.MailDeliveryFailed] if the email cannot be sent; the
//     staged token stays valid so a retry can still succeed.
func (service *Service) ResendVerification(ctx context.Context, userID string) error {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsEmailVerified {
		return apperr.Conflict("Email is already verified")
	}

	token, err := newTemporaryToken()
	if err != nil {
		return fmt.Errorf("auth_service_resend_token_failed: %w", err)
	}
	user.SetVerificationToken(token.hash, token.expiresAt)

	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_resend_save_failed: %w", err)
	}

	// The caller explicitly asked for this email, so a delivery failure is
	// a real failure.
	return service.dispatchEmail(ctx, mail.PolicyPropagate, mail.Message{
		To:      user.Email,
		Subject: "Verify your email",
		Content: mail.VerificationContent(user.Username, service.verificationURL(token.raw)),
	}, nil)
}

// ForgotPassword stages a password reset and emails the reset link.
//
// # Returns
//   - Returns [apperr.NotFound] when no account holds the email.
//   - Returns [apperr.MailDeliveryFailed] if the email cannot be sent; the
//     staged reset token is rolled back so no orphaned token survives.
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := service.userRepository.FindByUsernameOrEmail(ctx, "", identity.NormalizeEmail(email))
	if err != nil {
		return apperr.NotFound("User with this email")
	}

	token, err := newTemporaryToken()
	if err != nil {
		return fmt.Errorf("auth_service_forgot_token_failed: %w", err)
	}
	user.SetResetToken(token.hash, token.expiresAt)

	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_forgot_save_failed: %w", err)
	}

	// Without the link the staged token is unreachable; roll it back so the
	// account carries no orphaned reset state.
	rollback := func(rollbackCtx context.Context) error {
		user.ClearResetToken()
		return service.userRepository.Save(rollbackCtx, user)
	}

	return service.dispatchEmail(ctx, mail.PolicyReportAndRollback, mail.Message{
		To:      user.Email,
		Subject: "Reset your password",
		Content: mail.PasswordResetContent(user.Username, service.resetURL(token.raw)),
	}, rollback)
}

// ResetPassword consumes an emailed reset token and replaces the password.
//
// Also revokes the stored refresh token: every existing session must
// re-authenticate with the new password.
func (service *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := service.userRepository.FindByResetToken(ctx, sec.HashToken(rawToken))
	if err != nil {
		return apperr.BadRequest("Token is invalid or expired")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}
	user.ClearResetToken()
	user.ClearRefreshToken()

	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_reset_save_failed: %w", err)
	}

	return nil
}

// ChangePassword replaces the password for an authenticated user after
// verifying the current one. Revokes the stored refresh token.
func (service *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.IsPasswordCorrect(currentPassword) {
		return apperr.BadRequest("Current password is incorrect")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("auth_service_change_hash_failed: %w", err)
	}
	user.ClearRefreshToken()

	if err := service.userRepository.Save(ctx, user); err != nil {
		return fmt.Errorf("auth_service_change_save_failed: %w", err)
	}

	return nil
}

// CurrentUser loads the authenticated user's profile.
func (service *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(ctx, userID)
}

// ── Internals ────────────────────────────────────────────────────────────────

// issueSession generates a fresh access/refresh pair and persists the new
// refresh token on the account, displacing any previous one.
func (service *Service) issueSession(ctx context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	user.RefreshToken = refreshToken
	if err := service.userRepository.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_session_save_failed: %w", err)
	}

	now := time.Now()
	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(service.tokenProvider.AccessTokenTTL()),
		RefreshTokenExpiresAt: now.Add(service.tokenProvider.RefreshTokenTTL()),
		User:                  user,
	}, nil
}

// temporaryToken is a freshly minted one-time token. The raw value goes into
// the emailed link; only the hash is persisted.
type temporaryToken struct {
	raw       string
	hash      string
	expiresAt time.Time
}

func newTemporaryToken() (temporaryToken, error) {
	raw, err := sec.GenerateSecureToken(TemporaryTokenBytes)
	if err != nil {
		return temporaryToken{}, err
	}

	return temporaryToken{
		raw:       raw,
		hash:      sec.HashToken(raw),
		expiresAt: time.Now().Add(TemporaryTokenTTL),
	}, nil
}

func (service *Service) verificationURL(rawToken string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email/%s", service.appURL, rawToken)
}

func (service *Service) resetURL(rawToken string) string {
	return fmt.Sprintf("%s/api/v1/auth/reset-password/%s", service.appURL, rawToken)
}

// dispatchEmail sends the message and applies the caller's [mail.SendPolicy]
// to any delivery failure.
func (service *Service) dispatchEmail(ctx context.Context, policy mail.SendPolicy, message mail.Message, rollback func(context.Context) error) error {
	err := service.mailer.Send(ctx, message)
	if err == nil {
		return nil
	}

	logger := ctxutil.GetLogger(ctx)

	switch policy {
	case mail.PolicyIgnore:
		logger.WarnContext(ctx, "email_send_ignored",
			slog.String("to", message.To),
			slog.String("subject", message.Subject),
			slog.Any("error", err),
		)
		return nil

	case mail.PolicyReportAndRollback:
		if rollback != nil {
			if rollbackErr := rollback(ctx); rollbackErr != nil {
				logger.ErrorContext(ctx, "email_rollback_failed",
					slog.String("to", message.To),
					slog.Any("error", rollbackErr),
				)
			}
		}
		return apperr.MailDeliveryFailed(err)

	default: // mail.PolicyPropagate
		return apperr.MailDeliveryFailed(err)
	}
}
