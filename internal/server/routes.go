package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/server/api"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Auth          *api.AuthHandlers
	Organizations *api.OrganizationHandlers
	Memberships   *api.MembershipHandlers
	Projects      *api.ProjectHandlers
	System        *api.SystemHandlers
}

type Services struct {
	fx.In

	AuthService       *biz.AuthService
	MembershipService *biz.MembershipService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	publicGroup := server.Group(server.Config.BasePath, middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Health and version - DO NOT AUTH
		publicGroup.GET("/health", handlers.System.Health)
		publicGroup.GET("/version", handlers.System.Version)
		// Sign up and sign in - DO NOT AUTH
		publicGroup.POST("/auth/signup", handlers.Auth.SignUp)
		publicGroup.POST("/auth/signin", handlers.Auth.SignIn)
	}

	// Authenticated routes. The organization middleware establishes the
	// current tenant from the organization header after membership is
	// verified, so everything below reads and writes through the tenant
	// scope.
	authedGroup := server.Group(server.Config.BasePath,
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithJWTAuth(services.AuthService),
		middleware.WithOrganization(services.MembershipService),
	)
	{
		authedGroup.GET("/me", handlers.Auth.Me)

		authedGroup.POST("/organizations", handlers.Organizations.Create)
		authedGroup.GET("/organizations", handlers.Organizations.List)
		authedGroup.GET("/org", handlers.Organizations.Current)
		authedGroup.PATCH("/org", handlers.Organizations.Update)

		authedGroup.GET("/org/memberships", handlers.Memberships.List)
		authedGroup.POST("/org/memberships", handlers.Memberships.Create)
		authedGroup.PATCH("/org/memberships/:id", handlers.Memberships.Update)
		authedGroup.DELETE("/org/memberships/:id", handlers.Memberships.Delete)

		authedGroup.GET("/org/projects", handlers.Projects.List)
		authedGroup.POST("/org/projects", handlers.Projects.Create)
		authedGroup.GET("/org/projects/:id", handlers.Projects.Get)
		authedGroup.PATCH("/org/projects/:id", handlers.Projects.Update)
		authedGroup.DELETE("/org/projects/:id", handlers.Projects.Delete)

		authedGroup.GET("/system/scoping/summary", handlers.System.ScopingSummary)
		authedGroup.GET("/system/scoping/stats", handlers.System.ScopingStats)
		authedGroup.GET("/system/scoping/totals", handlers.System.ScopingTotals)
	}
}
