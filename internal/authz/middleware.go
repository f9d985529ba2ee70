package authz

import (
	"net/http"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// RequireRole rejects requests whose operator ranks below required.
func RequireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := RolesFromRequest(r)
			if !ok || !models.HasAtLeast(roles, required) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleFunc applies the role check inline when registering routes.
func RequireRoleFunc(required models.Role, next http.HandlerFunc) http.Handler {
	return RequireRole(required)(next)
}
