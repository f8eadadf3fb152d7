package middleware

import (
	"net/http"

	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

// RequireRole rejects requests whose actor does not hold the role.
func RequireRole(role enums.ActorRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role.String() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission rejects requests whose actor lacks the permission. The
// JWT permission set is advisory for clients; this is the enforcement point.
func RequirePermission(perm enums.Permission, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasPermission(r.Context(), perm) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "permission required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
