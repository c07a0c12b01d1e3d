package permission

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/transport"
	"github.com/designxcel/storefront/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	store MatrixStore
}

func NewHandler(store MatrixStore) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		store:       store,
	}
}

// Capabilities handles GET /auth/permissions: the payload the client mirror
// is seeded from. Clients re-fetch it after any 403 so an admin edit takes
// effect without waiting for re-login.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteFailure(w, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED", nil)
		return
	}

	var granular []string
	if identity.IsEmployee() {
		entries, err := h.store.ListForUser(r.Context(), identity.ID)
		if err != nil {
			h.Logger.Error("failed to load permission matrix", "user_id", identity.ID, "error", err)
			h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
			return
		}
		for _, entry := range entries {
			if entry.CanAccess {
				granular = append(granular, entry.Name)
			}
		}
	}

	caps := NewCapabilitySet(*identity, granular)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"role":        identity.Role,
		"type":        identity.Type,
		"permissions": caps.Permissions(),
		"sections":    caps.UnlockedSections(),
	})
}

// ListUserPermissions handles GET /admin/users/{id}/permissions: the full
// grid for the permission editor, absent rows included as denied.
func (h *Handler) ListUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	entries, err := h.store.ListForUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list user permissions", "user_id", userID, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"userId":      userID,
		"permissions": entries,
	})
}

// GrantPermission handles PUT /admin/users/{id}/permissions/{name}.
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	actor, _ := auth.IdentityFromContext(r.Context())

	var grantedBy int64
	if actor != nil {
		grantedBy = actor.ID
	}

	if err := h.store.Grant(r.Context(), userID, name, grantedBy); err != nil {
		if err == ErrUnknownPermission {
			h.WriteFailure(w, http.StatusBadRequest, "Unknown permission name", "VALIDATION_FAILED", nil)
			return
		}
		h.Logger.Error("failed to grant permission", "user_id", userID, "permission", name, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"userId":     userID,
		"permission": name,
		"canAccess":  true,
	})
}

// RevokePermission handles DELETE /admin/users/{id}/permissions/{name}.
func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.store.Revoke(r.Context(), userID, name); err != nil {
		if err == ErrUnknownPermission {
			h.WriteFailure(w, http.StatusBadRequest, "Unknown permission name", "VALIDATION_FAILED", nil)
			return
		}
		h.Logger.Error("failed to revoke permission", "user_id", userID, "permission", name, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"userId":     userID,
		"permission": name,
		"canAccess":  false,
	})
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		h.WriteFailure(w, http.StatusBadRequest, "Invalid user id", "VALIDATION_FAILED", nil)
		return 0, false
	}
	return userID, true
}
