package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin allows only roles with admin-panel access, which covers
// both admin and master_admin.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.CanAccessAdmin() {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("role", string(role)),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMasterAdmin allows only the master_admin role, which is the
// one allowed to manage other accounts.
func RequireMasterAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.CanManageUsers() {
				logger.Warn("User without account management rights attempted user admin endpoint",
					zap.String("role", string(role)),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
