/*
middleware.go - Authentication middleware and JWT token management

PURPOSE:
  Issues and validates the bearer tokens that protect every endpoint
  behind /api except auth, feedback submission, and legal pages. The
  middleware resolves the token to a full User and stashes it in the
  request context so handlers never re-fetch.

SECURITY MODEL:
  - HS256 signed tokens; the secret comes from configuration
  - Tokens carry the user ID in the subject claim plus issued-at and
    expiry; nothing else, so a leaked token reveals no profile data
  - Admin-only routes layer requireAdmin on top of requireAuth
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// TOKEN MANAGER
// =============================================================================

// TokenManager issues and parses the signed bearer tokens used by the
// API. It is safe for concurrent use.
type TokenManager struct {
	Secret []byte
	TTL    time.Duration
}

// Issue creates a signed token for the user, valid for the configured
// TTL from now.
func (tm *TokenManager) Issue(userID ce.UserID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   string(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.TTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.Secret)
}

// Parse validates a token string and returns the user ID it names.
// Expired tokens return ce.ErrTokenExpired; everything else invalid
// returns ce.ErrUnauthorized.
func (tm *TokenManager) Parse(tokenString string) (ce.UserID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return tm.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ce.ErrTokenExpired
		}
		return "", ce.ErrUnauthorized
	}
	if !token.Valid || claims.Subject == "" {
		return "", ce.ErrUnauthorized
	}
	return ce.UserID(claims.Subject), nil
}

// =============================================================================
// REQUEST CONTEXT
// =============================================================================

type contextKey string

const userContextKey contextKey = "cetrack.user"

// userFrom returns the authenticated user placed in the context by
// requireAuth. The bool is false on routes outside the middleware.
func userFrom(ctx context.Context) (ce.User, bool) {
	u, ok := ctx.Value(userContextKey).(ce.User)
	return u, ok
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// requireAuth extracts the bearer token, resolves it to a user, and
// injects the user into the request context. Requests without a valid
// token get 401.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", ce.ErrUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		userID, err := h.Tokens.Parse(tokenString)
		if err != nil {
			if err == ce.ErrTokenExpired {
				h.writeError(w, http.StatusUnauthorized, "Session expired, please log in again", err)
				return
			}
			h.writeError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		user, err := h.Store.UserByID(r.Context(), userID)
		if err != nil {
			// The account may have been deleted since the token was
			// issued.
			h.writeError(w, http.StatusUnauthorized, "Invalid token", ce.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route to admin accounts. Must be nested inside
// requireAuth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFrom(r.Context())
		if !ok || !user.IsAdmin {
			h.writeError(w, http.StatusForbidden, "Admin access required", ce.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// optionalAuth resolves a bearer token when present but lets anonymous
// requests through. Feedback submission uses it to link signed-in
// submitters without requiring login.
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			if userID, err := h.Tokens.Parse(strings.TrimPrefix(header, "Bearer ")); err == nil {
				if user, err := h.Store.UserByID(r.Context(), userID); err == nil {
					ctx := context.WithValue(r.Context(), userContextKey, user)
					r = r.WithContext(ctx)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
