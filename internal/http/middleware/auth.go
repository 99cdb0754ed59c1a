package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/auth"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// ClaimsKey is the context key for the access token claims.
	ClaimsKey contextKey = "claims"
	// WorkspaceIDKey is the context key for the active workspace ID.
	WorkspaceIDKey contextKey = "workspace_id"
	// MembershipKey is the context key for the caller's membership in
	// the active workspace.
	MembershipKey contextKey = "membership"
)

// Auth creates middleware that validates bearer access tokens.
// A missing credential is AUTH_REQUIRED; a present but unverifiable one
// (expired, bad signature, malformed) is AUTH_INVALID. Both are 401.
func Auth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "missing authorization")
				return
			}

			claims, err := tokens.VerifyAccessToken(tokenString)
			if err != nil {
				httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthInvalid, "invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthInvalid, "invalid token subject")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetClaims extracts the access token claims from the request context.
func GetClaims(ctx context.Context) (*auth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.AccessTokenClaims)
	return claims, ok
}
