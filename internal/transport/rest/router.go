package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/permission"
	"github.com/designxcel/storefront/internal/product"
	"github.com/designxcel/storefront/internal/transport/middleware"
	"github.com/designxcel/storefront/internal/transport/swagger"
	"github.com/designxcel/storefront/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RouterDeps carries everything RegisterAllRoutes wires together. Handlers
// may be nil in partial setups (tests); their routes are skipped.
type RouterDeps struct {
	DB                *sql.DB
	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	ProductHandler    *product.Handler
	PermissionHandler *permission.Handler

	Session        *middleware.SessionMiddleware
	Roles          *middleware.RoleGate
	Permissions    *middleware.PermissionGate
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Landing page for denied staff requests made from a browser.
	router.Get("/employee/forbidden", forbiddenPageHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/refresh", deps.AuthHandler.RefreshToken)
				sr.Post("/logout", deps.AuthHandler.Logout)
				if deps.UserHandler != nil {
					sr.Post("/register", deps.UserHandler.Register)
				}

				if deps.PermissionHandler != nil && deps.Session != nil {
					sr.With(deps.Session.Authenticate).Get("/permissions", deps.PermissionHandler.Capabilities)
				}
			})
		}

		// Public catalog. Optional authentication lets handlers tell guests
		// from logged-in shoppers without requiring a token.
		if deps.ProductHandler != nil && deps.Session != nil {
			r.Group(func(cr chi.Router) {
				cr.Use(deps.Session.OptionalAuthenticate)
				cr.Get("/products", deps.ProductHandler.GetCatalog)
				cr.Get("/products/{slug}", deps.ProductHandler.GetProductBySlug)
			})
		}

		if deps.Session == nil {
			return
		}

		// Everything below requires a verified session.
		r.Group(func(pr chi.Router) {
			pr.Use(deps.Session.Authenticate)

			if deps.AuthHandler != nil {
				pr.Get("/users/me", deps.AuthHandler.Me)
			}

			if deps.Roles == nil || deps.Permissions == nil {
				return
			}

			// Staff area: employee accounts only, then per-section
			// permission checks.
			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(deps.Roles.RequireUserType(auth.UserTypeEmployee))

				if deps.ProductHandler != nil {
					ar.Route("/products", func(pror chi.Router) {
						pror.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionProducts, permission.ActionView))).
							Get("/", deps.ProductHandler.ListAll)
						pror.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionProducts, permission.ActionCreate))).
							Post("/", deps.ProductHandler.CreateProduct)
						pror.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionProducts, permission.ActionUpdate))).
							Put("/{id}", deps.ProductHandler.UpdateProduct)
						pror.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionProducts, permission.ActionDelete))).
							Delete("/{id}", deps.ProductHandler.DeleteProduct)
					})
				}

				if deps.UserHandler != nil {
					ar.Route("/users", func(ur chi.Router) {
						ur.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionView))).
							Get("/", deps.UserHandler.ListUsers)
						ur.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionView))).
							Get("/{id}", deps.UserHandler.GetUser)
						ur.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionUpdate))).
							Put("/{id}/role", deps.UserHandler.ChangeRole)
						ur.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionUpdate))).
							Post("/{id}/activate", deps.UserHandler.ActivateUser)
						ur.With(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionDelete))).
							Delete("/{id}", deps.UserHandler.DeactivateUser)
					})
				}

				// Granular permission editor: Admin or UserManager role, and
				// the users.canUpdate grant on top of that.
				if deps.PermissionHandler != nil {
					ar.Group(func(per chi.Router) {
						per.Use(deps.Roles.RequireRole(auth.RoleAdmin, auth.RoleUserManager))
						per.Use(deps.Permissions.CheckPermission(permission.Name(permission.SectionUsers, permission.ActionUpdate)))

						per.Get("/users/{id}/permissions", deps.PermissionHandler.ListUserPermissions)
						per.Put("/users/{id}/permissions/{name}", deps.PermissionHandler.GrantPermission)
						per.Delete("/users/{id}/permissions/{name}", deps.PermissionHandler.RevokePermission)
					})
				}
			})
		})
	})
}

func forbiddenPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Access Denied</title></head>
<body>
<h1>Access denied</h1>
<p>You do not have permission to view this page. Contact an administrator if you believe this is a mistake.</p>
</body>
</html>`))
}
