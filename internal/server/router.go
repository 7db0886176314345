package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/platform/tokens"
	"github.com/duca-customs-backend/internal/server/handler"
	"github.com/duca-customs-backend/internal/server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tokenManager *tokens.Manager,
	authHandler *handler.AuthHandler,
	declarationHandler *handler.DeclarationHandler,
	userHandler *handler.UserHandler,
	importerHandler *handler.PartnerHandler,
	exporterHandler *handler.PartnerHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	r.POST("/auth/login", authHandler.Login)

	// Routes for any authenticated caller. Declaration role gates
	// (TRANSPORTISTA submits and lists own, AGENTE reviews) are enforced
	// inside the workflow.
	authed := r.Group("", middleware.RequireAuth(tokenManager))
	{
		declarations := authed.Group("/declarations")
		{
			declarations.POST("", declarationHandler.Create)
			declarations.GET("/:id", declarationHandler.GetByID)
		}

		authed.GET("/status/mine", declarationHandler.ListMine)

		validation := authed.Group("/validation")
		{
			validation.GET("/pending", declarationHandler.ListPending)
			validation.POST("/:id/decision", declarationHandler.Decide)
		}

		catalogs := authed.Group("/catalogs")
		{
			catalogs.GET("/importers", importerHandler.List)
			catalogs.GET("/exporters", exporterHandler.List)
		}
	}

	// Administration surface, ADMIN only.
	admin := r.Group("", middleware.RequireAuth(tokenManager), middleware.RequireRole(user.RoleAdmin))
	{
		users := admin.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.PATCH("/:id", userHandler.SetStatus)
			users.DELETE("/:id", userHandler.Delete)
		}

		importers := admin.Group("/admin/importers")
		{
			importers.GET("", importerHandler.List)
			importers.PUT("/:id", importerHandler.Upsert)
			importers.PATCH("/:id/estado", importerHandler.SetStatus)
		}

		exporters := admin.Group("/admin/exporters")
		{
			exporters.GET("", exporterHandler.List)
			exporters.PUT("/:id", exporterHandler.Upsert)
			exporters.PATCH("/:id/estado", exporterHandler.SetStatus)
		}

		admin.GET("/admin/audit/:id", auditHandler.ListByActor)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
