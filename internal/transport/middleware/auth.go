package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/transport"
	"github.com/designxcel/storefront/pkg/logger"
)

// SessionMiddleware bridges HTTP requests to an Identity. Two extraction
// strategies feed the same verification path: the Authorization bearer header
// for API clients, and the session cookie for server-rendered pages. Token
// verification is pure computation; no I/O happens here.
type SessionMiddleware struct {
	*transport.BaseHandler
	codec      auth.CodecAPI
	cookieName string
}

func NewSessionMiddleware(codec auth.CodecAPI, cookieName string, lg *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		BaseHandler: transport.NewBaseHandler(lg),
		codec:       codec,
		cookieName:  cookieName,
	}
}

func (m *SessionMiddleware) extractToken(r *http.Request) string {
	if token := transport.BearerToken(r); token != "" {
		return token
	}
	return transport.CookieToken(r, m.cookieName)
}

// Authenticate terminates the request with a structured 401 unless a valid
// access token is presented. On success the request context carries the
// Identity and token metadata for downstream gates.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			m.WriteFailure(w, http.StatusUnauthorized, "Access token required", "MISSING_TOKEN", nil)
			return
		}

		claims, err := m.codec.VerifyAccessToken(token)
		if err != nil {
			m.writeVerifyFailure(w, r, err)
			return
		}

		identity := claims.Identity()
		info := &auth.TokenInfo{Raw: token}
		if claims.IssuedAt != nil {
			info.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			info.ExpiresAt = claims.ExpiresAt.Time
		}

		ctx := auth.ContextWithIdentity(r.Context(), &identity)
		ctx = auth.ContextWithToken(ctx, info)
		ctx = logger.With(ctx, "userID", identity.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate uses the same extraction, but every failure is
// swallowed and the request proceeds unauthenticated. For endpoints serving
// both guests and logged-in users.
func (m *SessionMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.codec.VerifyAccessToken(token)
		if err != nil {
			m.Logger.Debug("optional authentication skipped", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		identity := claims.Identity()
		ctx := auth.ContextWithIdentity(r.Context(), &identity)
		ctx = logger.With(ctx, "userID", identity.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) writeVerifyFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		m.WriteFailure(w, http.StatusUnauthorized, "Access token has expired", "TOKEN_EXPIRED",
			map[string]interface{}{"requiresRefresh": true})
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrNotAccessToken):
		m.WriteFailure(w, http.StatusUnauthorized, "Invalid access token", "INVALID_TOKEN", nil)
	default:
		m.Logger.Error("authentication failed", "path", r.URL.Path, "error", err)
		m.WriteFailure(w, http.StatusUnauthorized, "Authentication failed", "AUTH_FAILED", nil)
	}
}
