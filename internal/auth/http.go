// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/middleware"
	requestutil "github.com/taibuivan/identra/internal/platform/request"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/validate"
)

// Handler implements the authentication HTTP endpoints.
//
// # Architecture
//
// Handlers are the gatekeepers: JSON parsing, strict input validation, and
// cookie management live here. Business rules live in [Service]; handlers
// contain no storage access and no token logic.
type Handler struct {
	authService *Service

	// secureCookies marks session cookies Secure (HTTPS only). Disabled in
	// development so local HTTP clients keep working.
	secureCookies bool
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{
		authService:   service,
		secureCookies: secureCookies,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//
// Public:
//   - POST /register                  : Creates a new account.
//   - POST /login                     : Authenticates and sets session cookies.
//   - POST /refresh-token             : Rotates the refresh token pair.
//   - GET  /verify-email/{token}      : Consumes an emailed verification link.
//   - POST /forgot-password           : Emails a password reset link.
//   - POST /reset-password/{token}    : Consumes an emailed reset link.
//
// Authenticated:
//   - POST /logout                    : Revokes the session.
//   - POST /resend-email-verification : Re-sends the verification email.
//   - POST /change-password           : Rotates the password in place.
//   - GET  /current-user              : Returns the caller's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Get("/verify-email/{token}", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password/{token}", handler.resetPassword)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
		protected.Post("/resend-email-verification", handler.resendEmailVerification)
		protected.Post("/change-password", handler.changePassword)
		protected.Get("/current-user", handler.currentUser)
	})

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// register handles POST /api/v1/auth/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the sanitized User profile.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if email/username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).MinLen(FieldUsername, input.Username, 3)
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 6)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, "User registered successfully", map[string]any{
		FieldUser: user,
	})
}

// loginRequest represents the JSON payload expected for authentication.
// Either username or email identifies the account.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with tokens in both the body and
//     httpOnly session cookies.
//   - Writes HTTP 400 Bad Request for every failure: missing identifier,
//     unknown account, and wrong password alike.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	// Tokens travel in cookies for browsers AND in the body for mobile and
	// API clients that manage their own storage.
	handler.setSessionCookies(writer, session)
	respond.OK(writer, "User logged in successfully", map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	})
}

// logout handles POST /api/v1/auth/logout requests.
//
// Requires authentication. Clears the stored refresh token, revokes the
// presented access token, and expires both session cookies.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.Logout(request.Context(), claims.UserID, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.OK(writer, "User logged out successfully", nil)
}

// refreshTokenRequest carries the refresh token for clients that do not use
// cookies. The cookie takes precedence when both are present.
type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshToken handles POST /api/v1/auth/refresh-token requests.
//
// # Returns
//   - Writes HTTP 200 OK with a freshly rotated token pair.
//   - Writes HTTP 401 Unauthorized when the token is missing, invalid,
//     expired, or already rotated away.
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Token Extraction (cookie first, then body) ─────────────────────

	presented := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var input refreshTokenRequest
		// A missing or malformed body is fine here; the token may simply
		// be absent, which step 2 reports uniformly.
		_ = requestutil.DecodeJSON(request, &input)
		presented = input.RefreshToken
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.RefreshSession(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	handler.setSessionCookies(writer, session)
	respond.OK(writer, "Access token refreshed successfully", map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	})
}

// verifyEmail handles GET /api/v1/auth/verify-email/{token} requests.
//
// The raw token arrives in the emailed link's path. Unknown, used, and
// expired tokens all produce the same 400 response.
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	rawToken := requestutil.Param(request, FieldToken)
	if rawToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), rawToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Email verified successfully", nil)
}

// resendEmailVerification handles POST /api/v1/auth/resend-email-verification.
//
// Requires authentication.
//
// # Returns
//   - Writes HTTP 200 OK once the email has been handed to the relay.
//   - Writes HTTP 409 Conflict if the email is already verified.
//   - Writes HTTP 500 if the email cannot be delivered.
func (handler *Handler) resendEmailVerification(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerification(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Verification email sent successfully", nil)
}

// forgotPasswordRequest carries the account email for a reset request.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// forgotPassword handles POST /api/v1/auth/forgot-password requests.
//
// # Returns
//   - Writes HTTP 200 OK once the reset email has been handed to the relay.
//   - Writes HTTP 404 Not Found when no account holds the email.
//   - Writes HTTP 500 if the email cannot be delivered (the staged reset
//     token is rolled back).
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password reset email sent successfully", nil)
}

// resetPasswordRequest carries the replacement password.
type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// resetPassword handles POST /api/v1/auth/reset-password/{token} requests.
//
// Consumes the emailed reset token and replaces the password. All existing
// sessions are revoked; the client must log in again.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	rawToken := requestutil.Param(request, FieldToken)
	if rawToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNewPassword, input.NewPassword).MinLen(FieldNewPassword, input.NewPassword, 6)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), rawToken, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password reset successfully", nil)
}

// changePasswordRequest carries the current and replacement passwords.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// changePassword handles POST /api/v1/auth/change-password requests.
//
// Requires authentication. Verifies the current password before replacing
// it, and revokes the stored refresh token so other sessions must log in
// again.
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword)
	validator.Required(FieldNewPassword, input.NewPassword).MinLen(FieldNewPassword, input.NewPassword, 6)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), userID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully", nil)
}

// currentUser handles GET /api/v1/auth/current-user requests.
//
// Requires authentication. Returns the caller's sanitized profile.
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Current user fetched successfully", map[string]any{
		FieldUser: user,
	})
}

// ── Session Cookies ──────────────────────────────────────────────────────────

// setSessionCookies writes both token cookies with expiries matching the
// tokens they carry.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, handler.sessionCookie(
		constants.AccessTokenCookieName, session.AccessToken, session.AccessTokenExpiresAt))
	http.SetCookie(writer, handler.sessionCookie(
		constants.RefreshTokenCookieName, session.RefreshToken, session.RefreshTokenExpiresAt))
}

// clearSessionCookies expires both token cookies immediately.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := handler.sessionCookie(name, "", time.Time{})
		cookie.MaxAge = -1
		http.SetCookie(writer, cookie)
	}
}

// sessionCookie builds a token cookie with the house policy: httpOnly
// always, Secure outside development, SameSite=None so the SPA can call the
// API cross-origin.
func (handler *Handler) sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.AuthCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteNoneMode,
	}
}
