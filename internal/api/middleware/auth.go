package middleware

import (
	"context"
	"net/http"
	"time"

	"teacher2student/internal/common"
	"teacher2student/internal/common/security"
	"teacher2student/internal/domain/model"
	"teacher2student/internal/platform/cache"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
	TokenIDCtxKey  contextKey = "tokenID"
	TokenExpCtxKey contextKey = "tokenExp"
)

// Authenticator rejects anonymous callers before any role check runs. It
// expects jwtauth.Verifier to have parsed the Authorization header already,
// checks the token against the revocation store, and puts the caller's
// identity into the request context.
func Authenticator(tokenStore cache.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				common.RespondWithAuthRequired(w, r, "Authorization token required")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithAuthRequired(w, r, "Invalid token claims: "+err.Error())
				return
			}
			userRole, err := security.GetUserRoleFromClaims(claims)
			if err != nil {
				common.RespondWithAuthRequired(w, r, "Invalid token claims: "+err.Error())
				return
			}
			jti, err := security.GetTokenIDFromClaims(claims)
			if err != nil {
				common.RespondWithAuthRequired(w, r, "Invalid token claims: "+err.Error())
				return
			}

			revoked, err := tokenStore.IsRevoked(r.Context(), jti)
			if err != nil {
				common.RespondWithError(w, http.StatusInternalServerError, "Failed to check token state")
				return
			}
			if revoked {
				common.RespondWithAuthRequired(w, r, "Token has been revoked")
				return
			}

			exp, _ := security.GetExpiryFromClaims(claims)

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, userRole)
			ctx = context.WithValue(ctx, TokenIDCtxKey, jti)
			ctx = context.WithValue(ctx, TokenExpCtxKey, exp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TeacherOnly gates teacher operations. Runs after Authenticator, so a
// failure here means an authenticated caller with the wrong role.
func TeacherOnly(next http.Handler) http.Handler {
	return requireRole(model.RoleTeacher, "Teacher access required", next)
}

// StudentOnly gates student operations.
func StudentOnly(next http.Handler) http.Handler {
	return requireRole(model.RoleStudent, "Student access required", next)
}

func requireRole(role, message string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerRole, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || callerRole != role {
			common.RespondWithError(w, http.StatusForbidden, message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helpers to read the authenticated caller out of the context.

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}

func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	jti, ok := ctx.Value(TokenIDCtxKey).(string)
	return jti, ok
}

func GetTokenExpiryFromContext(ctx context.Context) (time.Time, bool) {
	exp, ok := ctx.Value(TokenExpCtxKey).(time.Time)
	return exp, ok
}
