package middleware

import (
	"net/http"
)

// Role names used across the API
const (
	RoleConsultant = "consultant"
	RoleClient     = "client"
)

// RBACMiddleware handles role-based access control.
// The role travels in the JWT, so no database lookup happens here.
type RBACMiddleware struct{}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware() *RBACMiddleware {
	return &RBACMiddleware{}
}

// RequireRole checks if the user has the required role
func (m *RBACMiddleware) RequireRole(roleName string) func(http.Handler) http.Handler {
	return m.RequireAnyRole(roleName)
}

// RequireAnyRole checks if the user has any of the required roles
func (m *RBACMiddleware) RequireAnyRole(roleNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, required := range roleNames {
				if role == required {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
