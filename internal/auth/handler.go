package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/designxcel/storefront/internal/transport"
	"github.com/designxcel/storefront/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service           ServiceAPI
	sessionCookieName string
}

func NewHandler(svc ServiceAPI, sessionCookieName string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:       transport.NewBaseHandler(lg),
		Service:           svc,
		sessionCookieName: sessionCookieName,
	}
}

// Login handles POST /auth/login. On success it returns the token pair plus
// the identity and granular permissions, and sets the session cookie used by
// server-rendered pages.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "Invalid request body", "VALIDATION_FAILED", nil)
		return
	}

	result, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Warn("login failed", "email", dto.Email, "error", err)

		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteFailure(w, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		case errors.Is(err, ErrUserInactive):
			h.WriteFailure(w, http.StatusUnauthorized, "Account is deactivated", "USER_INACTIVE", nil)
		default:
			var vErr ValidationError
			if errors.As(err, &vErr) {
				h.WriteFailure(w, http.StatusBadRequest, vErr.Error(), "VALIDATION_FAILED", nil)
			} else {
				h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
			}
		}
		return
	}

	h.setSessionCookie(w, result.Tokens.AccessToken, result.Tokens.ExpiresIn)
	h.WriteJSON(w, http.StatusOK, result)
}

// RefreshToken handles POST /auth/refresh.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "Invalid request body", "VALIDATION_FAILED", nil)
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, err.Error(), "VALIDATION_FAILED", nil)
		return
	}

	tokens, err := h.Service.Refresh(dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)

		switch {
		case errors.Is(err, ErrTokenExpired):
			h.WriteFailure(w, http.StatusUnauthorized, "Refresh token has expired", "TOKEN_EXPIRED", nil)
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrNotRefreshToken):
			h.WriteFailure(w, http.StatusUnauthorized, "Invalid refresh token", "INVALID_TOKEN", nil)
		case errors.Is(err, ErrUserInactive), errors.Is(err, ErrUserNotFound):
			h.WriteFailure(w, http.StatusUnauthorized, "Account is no longer active", "USER_INACTIVE", nil)
		default:
			h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
		}
		return
	}

	h.setSessionCookie(w, tokens.AccessToken, tokens.ExpiresIn)
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout. Tokens are stateless so the server only
// clears the session cookie; clients discard their copies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /users/me for the authenticated identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteFailure(w, http.StatusUnauthorized, "Authentication required", "AUTH_REQUIRED", nil)
		return
	}

	current, permissions, err := h.Service.IdentityWithPermissions(identity.ID)
	if err != nil {
		h.Logger.Error("failed to load current user", "user_id", identity.ID, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":        current,
		"permissions": permissions,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresIn int64) {
	if h.sessionCookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(expiresIn) * time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	if h.sessionCookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
