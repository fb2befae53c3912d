// internal/httpserver/auth.go
//
// JWT identity boundary.
// Responsibilities:
//   - Extract a token from "Authorization: Bearer" or the auth cookie.
//   - Verify HS256 tokens and place the caller's player id in the context.
//   - Mint tokens (used by the dev "token" command and by tests).
//
// Accounts live outside this service: a token's "id" claim is trusted as the
// acting player once the signature checks out.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// authUser is placed into request context by requireAuth.
type authUser struct {
	ID string `json:"id"`
}

// SignToken creates an HS256 JWT whose "id" claim is playerID.
func SignToken(secret, playerID string, ttl time.Duration) (string, time.Time, error) {
	if playerID == "" {
		return "", time.Time{}, errors.New("player id is required")
	}
	now := time.Now()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  playerID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	secret := []byte(s.opts.JWTSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerOrCookie(r, s.opts.CookieName)
		if tokenStr == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing token")
			return
		}
		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		id, _ := claims["id"].(string)
		if id == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated caller. Only valid behind requireAuth.
func currentUser(r *http.Request) string {
	if u, _ := r.Context().Value(ctxUserKey{}).(*authUser); u != nil {
		return u.ID
	}
	return ""
}
