// Package router wires the HTTP endpoints.
package router

import (
	"net/http"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/auth"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/handler"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handlers bundles the endpoint handlers for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Account   *handler.AccountHandler
	Dashboard *handler.DashboardHandler
}

// Setup builds the gin engine with all routes and middleware registered.
func Setup(
	env string,
	handlers Handlers,
	jwtService *auth.JWTService,
	revoker auth.TokenRevoker,
	logger *zap.Logger,
) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", handlers.Auth.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(jwtService, revoker, logger))
	{
		authed.POST("/auth/logout", handlers.Auth.Logout)
		authed.GET("/auth/me", handlers.Auth.Me)

		authed.GET("/dashboard/overview", handlers.Dashboard.Overview)
		authed.GET("/dashboard/tables/:view", handlers.Dashboard.Table)
		authed.GET("/dashboard/tables/:view/export", handlers.Dashboard.Export)
		authed.GET("/dashboard/tables/:view/share", handlers.Dashboard.Share)

		admin := authed.Group("")
		admin.Use(middleware.RequireSuperAdmin())
		{
			admin.POST("/dashboard/refresh", handlers.Dashboard.Refresh)
			admin.GET("/accounts", handlers.Account.List)
			admin.POST("/accounts", handlers.Account.Create)
			admin.GET("/accounts/:id", handlers.Account.Get)
			admin.PUT("/accounts/:id", handlers.Account.Update)
			admin.DELETE("/accounts/:id", handlers.Account.Delete)
		}
	}

	return r
}

// registerValidators adds the custom binding validators. "dashboardrole"
// accepts only the fixed role enumeration, so an unrecognized role is
// rejected at the binding boundary before any capability lookup.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dashboardrole", func(fl validator.FieldLevel) bool {
			return identity.IsValidRole(identity.Role(fl.Field().String()))
		})
	}
}
