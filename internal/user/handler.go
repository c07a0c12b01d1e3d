package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Register(dto RegisterDTO) (*User, error)
	ListUsers() ([]*User, error)
	GetByID(id int64) (*User, error)
	ChangeRole(id int64, role auth.Role) (*User, error)
	SetActive(id int64, active bool) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Register handles POST /auth/register: customer self-signup.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR", nil)
		return
	}

	created, err := h.Service.Register(dto)
	if err != nil {
		var vErr ValidationError
		if errors.As(err, &vErr) {
			h.WriteFailure(w, http.StatusBadRequest, vErr.Msg, "VALIDATION_ERROR", nil)
			return
		}
		h.Logger.Error("Register: failed to register user", "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to register", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

// ListUsers handles the admin user directory. Behind the users.canView gate.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers()
	if err != nil {
		h.Logger.Error("ListUsers: failed to list users", "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to list users", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.userIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid user id", "VALIDATION_ERROR", nil)
		return
	}

	u, err := h.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteFailure(w, http.StatusNotFound, "user not found", "USER_NOT_FOUND", nil)
			return
		}
		h.Logger.Error("GetUser: failed to get user", "user_id", id, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to get user", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// ChangeRole handles PUT /admin/users/{id}/role. Behind users.canUpdate.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.userIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid user id", "VALIDATION_ERROR", nil)
		return
	}

	var dto ChangeRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR", nil)
		return
	}

	updated, err := h.Service.ChangeRole(id, dto.Role)
	if err != nil {
		h.writeUpdateError(w, id, err, "ChangeRole")
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

// DeactivateUser handles DELETE /admin/users/{id}. Behind users.canDelete.
// Accounts are deactivated, never removed.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.userIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid user id", "VALIDATION_ERROR", nil)
		return
	}

	if _, err := h.Service.SetActive(id, false); err != nil {
		h.writeUpdateError(w, id, err, "DeactivateUser")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateUser handles POST /admin/users/{id}/activate. Behind users.canUpdate.
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.userIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid user id", "VALIDATION_ERROR", nil)
		return
	}

	updated, err := h.Service.SetActive(id, true)
	if err != nil {
		h.writeUpdateError(w, id, err, "ActivateUser")
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeUpdateError(w http.ResponseWriter, id int64, err error, op string) {
	var vErr ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		h.WriteFailure(w, http.StatusNotFound, "user not found", "USER_NOT_FOUND", nil)
	case errors.As(err, &vErr):
		h.WriteFailure(w, http.StatusBadRequest, vErr.Msg, "VALIDATION_ERROR", nil)
	default:
		h.Logger.Error(op+": failed to update user", "user_id", id, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to update user", "INTERNAL_ERROR", nil)
	}
}

func (h *Handler) userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
