// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/ctxutil"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec` token
// service implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error)
}

// DenylistChecker reports whether an access token's jti has been revoked
// (e.g. by logout) before its natural expiry.
type DenylistChecker interface {
	IsDenied(ctx context.Context, jti string) (bool, error)
}

// Authenticate extracts and verifies the JWT carried by the request.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header, falling back to the
//     accessToken cookie for browser clients.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Reject tokens whose jti sits on the revocation denylist.
//  5. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier, denylist DenylistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr, present, err := extractAccessToken(request)
			if err != nil {
				respondUnauthorized(writer, request, "Invalid authorization format")
				return
			}

			// Anonymous access: downstream RequireAuth decides whether that's acceptable.
			if !present {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyAccessToken(tokenStr)
			if err != nil {
				respondUnauthorized(writer, request, "Invalid or expired token")
				return
			}

			// A structurally valid token may still have been revoked by logout.
			denied, err := denylist.IsDenied(request.Context(), claims.ID)
			if err != nil {
				respondError(writer, request, apperr.Internal(err))
				return
			}
			if denied {
				respondUnauthorized(writer, request, "Token has been revoked")
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// extractAccessToken locates the bearer token in the Authorization header or,
// failing that, the access-token cookie. The boolean reports presence; the
// error reports a malformed Authorization header.
func extractAccessToken(request *http.Request) (token string, present bool, err error) {
	authHeader := request.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false, apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], true, nil
	}

	cookie, cookieErr := request.Cookie(constants.AccessTokenCookieName)
	if cookieErr == nil && cookie.Value != "" {
		return cookie.Value, true, nil
	}

	return "", false, nil
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respondUnauthorized(writer, request, "Authentication required")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func respondUnauthorized(writer http.ResponseWriter, request *http.Request, message string) {
	respond.Error(writer, request, apperr.Unauthorized(message))
}

func respondError(writer http.ResponseWriter, request *http.Request, err error) {
	respond.Error(writer, request, err)
}
