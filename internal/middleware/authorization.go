package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireRole middleware ensures the authenticated user holds one of the
// allowed roles. Used to keep direct sales and entrepreneur listings away
// from plain customer accounts.
func RequireRole(logger *zap.Logger, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("User role not authorized",
				zap.String("role", role),
				zap.Strings("allowed_roles", allowedRoles),
			)
			respondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
