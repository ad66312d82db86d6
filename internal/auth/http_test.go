// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/auth"
	"github.com/taibuivan/identra/internal/platform/constants"
)

// newHandlerHarness mounts the auth routes on a bare router, bypassing the
// global middleware chain. Protected endpoints are exercised at the service
// level instead; these tests cover the HTTP contract of the public ones.
func newHandlerHarness() (*serviceHarness, http.Handler) {
	h := newServiceHarness()
	handler := auth.NewHandler(h.service, false)
	return h, handler.Routes()
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Register verifies the 201 envelope and that no secret fields
leak through the serialized user.
*/
func TestHandler_Register(t *testing.T) {
	_, router := newHandlerHarness()

	response := postJSON(t, router, "/register",
		`{"username":"taibv","email":"taibv@identra.app","password":"secret1","fullName":"Tai Bui Van"}`)

	require.Equal(t, http.StatusCreated, response.Code)

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Data       struct {
			User map[string]any `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))

	assert.Equal(t, http.StatusCreated, envelope.StatusCode)
	assert.Equal(t, "taibv", envelope.Data.User["username"])
	assert.NotContains(t, response.Body.String(), "secret1")
	assert.NotContains(t, response.Body.String(), "passwordHash")
}

/*
TestHandler_Register_Validation verifies the request gate rejects bad
payloads before the service runs.
*/
func TestHandler_Register_Validation(t *testing.T) {
	_, router := newHandlerHarness()

	tests := []struct {
		name string
		body string
	}{
		{"malformed_json", `{"username":`},
		{"short_username", `{"username":"ab","email":"a@b.co","password":"secret1"}`},
		{"bad_email", `{"username":"taibv","email":"nope","password":"secret1"}`},
		{"short_password", `{"username":"taibv","email":"a@b.co","password":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := postJSON(t, router, "/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, response.Code)
		})
	}
}

/*
TestHandler_Login_SetsSessionCookies verifies both token cookies are written
with the house policy (httpOnly, SameSite=None, path=/).
*/
func TestHandler_Login_SetsSessionCookies(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)

	response := postJSON(t, router, "/login", `{"username":"taibv","password":"secret1"}`)
	require.Equal(t, http.StatusOK, response.Code)

	cookies := response.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, cookie := range cookies {
		byName[cookie.Name] = cookie
	}

	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie, ok := byName[name]
		require.True(t, ok, "missing cookie %q", name)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
		assert.Equal(t, constants.AuthCookiePath, cookie.Path)
		assert.NotEmpty(t, cookie.Value)
	}

	// Tokens also travel in the body for non-browser clients.
	assert.Contains(t, response.Body.String(), `"accessToken"`)
	assert.Contains(t, response.Body.String(), `"refreshToken"`)
}

/*
TestHandler_Login_BadCredentials verifies every login failure is a 400.
*/
func TestHandler_Login_BadCredentials(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing_identifier", `{"password":"secret1"}`},
		{"unknown_user", `{"username":"nobody","password":"secret1"}`},
		{"wrong_password", `{"username":"taibv","password":"wrong"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := postJSON(t, router, "/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, response.Code)
		})
	}
}

/*
TestHandler_RefreshToken_FromCookie verifies rotation works with the token
carried only in the cookie, and rejects requests with no token at all.
*/
func TestHandler_RefreshToken_FromCookie(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)

	login := postJSON(t, router, "/login", `{"username":"taibv","password":"secret1"}`)
	require.Equal(t, http.StatusOK, login.Code)

	var refreshCookie *http.Cookie
	for _, cookie := range login.Result().Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			refreshCookie = cookie
		}
	}
	require.NotNil(t, refreshCookie)

	request := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	request.AddCookie(refreshCookie)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"accessToken"`)

	// No cookie and no body token -> 401.
	bare := postJSON(t, router, "/refresh-token", ``)
	assert.Equal(t, http.StatusUnauthorized, bare.Code)
}

/*
TestHandler_VerifyEmail verifies the emailed link's GET endpoint consumes
the path token.
*/
func TestHandler_VerifyEmail(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)
	rawToken := h.emailedToken(t, "/api/v1/auth/verify-email/")

	request := httptest.NewRequest(http.MethodGet, "/verify-email/"+rawToken, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Replaying the consumed token is a 400.
	replay := httptest.NewRecorder()
	router.ServeHTTP(replay, httptest.NewRequest(http.MethodGet, "/verify-email/"+rawToken, nil))
	assert.Equal(t, http.StatusBadRequest, replay.Code)
}

/*
TestHandler_ForgotPassword verifies status mapping for the public reset
request endpoint.
*/
func TestHandler_ForgotPassword(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)

	known := postJSON(t, router, "/forgot-password", `{"email":"taibv@identra.app"}`)
	assert.Equal(t, http.StatusOK, known.Code)

	unknown := postJSON(t, router, "/forgot-password", `{"email":"nobody@identra.app"}`)
	assert.Equal(t, http.StatusNotFound, unknown.Code)

	invalid := postJSON(t, router, "/forgot-password", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

/*
TestHandler_ResetPassword verifies the path-token reset endpoint.
*/
func TestHandler_ResetPassword(t *testing.T) {
	h, router := newHandlerHarness()
	h.register(t)

	require.NoError(t, h.service.ForgotPassword(context.Background(), "taibv@identra.app"))
	rawToken := h.emailedToken(t, "/api/v1/auth/reset-password/")

	response := postJSON(t, router, "/reset-password/"+rawToken, `{"newPassword":"brand-new-pass"}`)
	assert.Equal(t, http.StatusOK, response.Code)

	// Unknown token -> 400, same as expired.
	bad := postJSON(t, router, "/reset-password/unknown-token", `{"newPassword":"brand-new-pass"}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}
