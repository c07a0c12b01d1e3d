package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/designxcel/storefront/internal"
	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/core/events"
	"github.com/designxcel/storefront/internal/permission"
	"github.com/designxcel/storefront/internal/transport"
)

// PermissionGate enforces the per-user permission matrix on employee routes.
// The one non-negotiable property: never grant access on error or absence of
// data. A missing row denies, a store failure denies, a missing identity
// denies.
type PermissionGate struct {
	*transport.BaseHandler
	store         permission.MatrixStore
	eventBus      *events.EventBus
	forbiddenPath string
}

func NewPermissionGate(store permission.MatrixStore, eventBus *events.EventBus, forbiddenPath string, lg *slog.Logger) *PermissionGate {
	if forbiddenPath == "" {
		forbiddenPath = "/employee/forbidden"
	}
	return &PermissionGate{
		BaseHandler:   transport.NewBaseHandler(lg),
		store:         store,
		eventBus:      eventBus,
		forbiddenPath: forbiddenPath,
	}
}

// CheckPermission gates a route on a single matrix row. Admin bypasses the
// matrix entirely; everyone else needs a stored can_access = true.
func (g *PermissionGate) CheckPermission(requiredPermission string) func(http.Handler) http.Handler {
	return g.check([]string{requiredPermission})
}

// CheckAnyPermission allows when any of the listed rows is granted. Same
// bypass and fail-closed rules as CheckPermission.
func (g *PermissionGate) CheckAnyPermission(requiredPermissions ...string) func(http.Handler) http.Handler {
	return g.check(requiredPermissions)
}

func (g *PermissionGate) check(requiredPermissions []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok || identity == nil || identity.ID == 0 {
				g.WriteFailure(w, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED", nil)
				return
			}

			if identity.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			// Customers have no rows in the matrix by construction.
			if !identity.IsEmployee() {
				g.deny(w, r, identity, requiredPermissions)
				return
			}

			ctx, cancel := internal.WithTimeout(r.Context(), 0)
			defer cancel()

			allowed, err := g.lookup(ctx, identity.ID, requiredPermissions)
			if err != nil {
				g.Logger.Error("permission check failed",
					"user_id", identity.ID,
					"permissions", requiredPermissions,
					"error", err)
				g.denyOnError(w, r)
				return
			}

			if !allowed {
				g.deny(w, r, identity, requiredPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *PermissionGate) lookup(ctx context.Context, userID int64, names []string) (bool, error) {
	if len(names) == 1 {
		return g.store.HasPermission(ctx, userID, names[0])
	}
	count, err := g.store.CountGranted(ctx, userID, names)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *PermissionGate) deny(w http.ResponseWriter, r *http.Request, identity *auth.Identity, required []string) {
	g.Logger.Warn("access denied: permission not granted",
		"user_id", identity.ID,
		"role", identity.Role,
		"required_permissions", required,
		"path", r.URL.Path)

	if g.eventBus != nil {
		_ = g.eventBus.Publish(context.Background(),
			events.NewPermissionDeniedEvent(identity.ID, strings.Join(required, ","), r.URL.Path))
	}

	if wantsHTML(r) {
		http.Redirect(w, r, g.forbiddenPath, http.StatusFound)
		return
	}

	g.WriteFailure(w, http.StatusForbidden, "You do not have permission to perform this action", "PERMISSION_DENIED",
		map[string]interface{}{"required": required})
}

// denyOnError handles infrastructure failures: HTML clients land on the
// forbidden page, API clients get a generic 500. Never fail open.
func (g *PermissionGate) denyOnError(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, g.forbiddenPath, http.StatusFound)
		return
	}
	g.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
