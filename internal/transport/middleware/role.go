package middleware

import (
	"log/slog"
	"net/http"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/transport"
)

// RoleGate builds declarative role/type middleware. It must run after the
// session middleware: a missing identity is a 401, not a 403.
type RoleGate struct {
	*transport.BaseHandler
}

func NewRoleGate(lg *slog.Logger) *RoleGate {
	return &RoleGate{BaseHandler: transport.NewBaseHandler(lg)}
}

// RequireRole allows only identities whose role is in the allowed set.
func (g *RoleGate) RequireRole(allowedRoles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok || identity == nil {
				g.WriteFailure(w, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED", nil)
				return
			}

			for _, role := range allowedRoles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.Logger.Warn("access denied: role not allowed",
				"user_id", identity.ID,
				"required_roles", allowedRoles,
				"current_role", identity.Role)
			g.WriteFailure(w, http.StatusForbidden, "Insufficient permissions", "INSUFFICIENT_PERMISSIONS",
				map[string]interface{}{
					"required": allowedRoles,
					"current":  identity.Role,
				})
		})
	}
}

// RequireUserType allows only identities whose type is in the allowed set.
// Role and type are orthogonal: a route can require "any employee" without
// enumerating every employee role.
func (g *RoleGate) RequireUserType(allowedTypes ...auth.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok || identity == nil {
				g.WriteFailure(w, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED", nil)
				return
			}

			for _, t := range allowedTypes {
				if identity.Type == t {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.Logger.Warn("access denied: user type not allowed",
				"user_id", identity.ID,
				"required_types", allowedTypes,
				"current_type", identity.Type)
			g.WriteFailure(w, http.StatusForbidden, "Invalid user type", "INVALID_USER_TYPE",
				map[string]interface{}{
					"required": allowedTypes,
					"current":  identity.Type,
				})
		})
	}
}
