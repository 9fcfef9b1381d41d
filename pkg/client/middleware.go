package client

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-todo/pkg/config"
	errs "github.com/tendant/simple-todo/pkg/errors"
)

// HasRole reports whether the user holds any of roles, ignoring case.
func (u *AuthUser) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, want := range roles {
		if config.HasRole(u.ExtraClaims.Roles, want) {
			return true
		}
	}
	return false
}

// RequireAuth rejects requests that have no authenticated user.
// Must be used after AuthUserMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r) == nil {
			slog.Debug("Unauthenticated request to protected resource")
			errs.Render(w, r, errs.Unauthorized("", "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns a middleware that checks if the authenticated user has any of the specified roles.
// Returns 401 Unauthorized if not authenticated.
// Returns 403 Forbidden if authenticated but missing required role.
// Must be used after AuthUserMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthUser(r)
			if user == nil {
				slog.Debug("Unauthenticated request to role-protected resource", "requiredRoles", roles)
				errs.Render(w, r, errs.Unauthorized("", "authentication required"))
				return
			}

			if !user.HasRole(roles...) {
				slog.Warn("User lacks required role",
					"userId", user.UserID,
					"userRoles", user.ExtraClaims.Roles,
					"requiredRoles", roles)
				errs.Render(w, r, errs.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
