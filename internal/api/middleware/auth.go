package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/auth"
)

// Auth resolves bearer session tokens into an owner ID on the request context.
type Auth struct {
	jwt *auth.JWTManager
}

func NewAuth(jwt *auth.JWTManager) *Auth {
	return &Auth{jwt: jwt}
}

// Optional admits guests. A request without an Authorization header passes
// through anonymously; a header with a bad or expired token is rejected
// rather than silently downgraded to guest.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		a.authenticate(w, r, next)
	})
}

// RequireOwner rejects requests that reached it without an owner, for routes
// nested under Optional.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetOwnerID(r); !ok {
			response.Error(w, http.StatusUnauthorized,
				"AUTH_REQUIRED", "Sign in to use this endpoint", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token := extractBearerToken(r)
	if token == "" {
		response.Error(w, http.StatusUnauthorized,
			"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
		return
	}

	claims, err := a.jwt.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			response.Error(w, http.StatusUnauthorized,
				"TOKEN_EXPIRED", "Session expired, sign in again", nil)
			return
		}
		response.Error(w, http.StatusUnauthorized,
			"INVALID_TOKEN", "Invalid session token", nil)
		return
	}

	ctx := SetOwnerID(r.Context(), claims.Subject)
	ctx = setEmail(ctx, claims.Email)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
