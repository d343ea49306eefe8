// Package router wires the Aegis HTTP routes to their handlers and
// declares the permission each route requires.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/internal/aegis/handler"
	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/guard"
	"github.com/kart-io/aegis/pkg/middleware"
	"github.com/kart-io/aegis/pkg/security/auth/jwt"
	authmw "github.com/kart-io/aegis/pkg/security/auth/middleware"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Policy *handler.PolicyHandler
	Role   *handler.RoleHandler
	Domain *handler.DomainHandler
}

// Permissions the admin routes require.
var (
	policiesRead  = authz.NewRequirement("policies", "read")
	policiesWrite = authz.NewRequirement("policies", "write")
	rolesRead     = authz.NewRequirement("roles", "read")
	rolesWrite    = authz.NewRequirement("roles", "write")
	domainsRead   = authz.NewRequirement("domains", "read")
	domainsWrite  = authz.NewRequirement("domains", "write")
)

// New builds the Gin engine with common middleware, the authentication
// layer, and the guarded admin routes.
func New(tokens *jwt.Manager, g *guard.Guard, h *Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := engine.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)

		protected := auth.Group("")
		protected.Use(authmw.Authn(tokens))
		{
			protected.POST("/logout", h.Auth.Logout)
		}
	}

	v1 := engine.Group("/v1")
	v1.Use(authmw.Authn(tokens))
	{
		policies := v1.Group("/policies")
		{
			policies.GET("", g.Require(policiesRead), h.Policy.List)
			policies.POST("", g.Require(policiesWrite), h.Policy.Grant)
			policies.POST("/revoke", g.Require(policiesWrite), h.Policy.Revoke)
			policies.POST("/reload", g.Require(policiesWrite), h.Policy.Reload)
		}

		roles := v1.Group("/roles")
		{
			roles.POST("/assign", g.Require(rolesWrite), h.Role.Assign)
			roles.POST("/revoke", g.Require(rolesWrite), h.Role.Revoke)
			roles.GET("/:role/permissions", g.Require(rolesRead), h.Role.Permissions)
			roles.DELETE("/:role", g.Require(rolesWrite), h.Role.Delete)
		}

		v1.GET("/users/:user/roles", g.Require(rolesRead), h.Role.UserRoles)

		domains := v1.Group("/domains")
		{
			domains.GET("", g.Require(domainsRead), h.Domain.List)
			domains.GET("/:name", g.Require(domainsRead), h.Domain.Get)
			domains.POST("", g.Require(domainsWrite), h.Domain.Create)
			domains.DELETE("/:name", g.Require(domainsWrite, policiesWrite), h.Domain.Delete)
		}
	}

	return engine
}
