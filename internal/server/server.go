// Package server wires the HTTP surface: router, middleware, handlers, and
// the server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duca-customs-backend/internal/config"
	"github.com/duca-customs-backend/internal/platform/tokens"
	"github.com/duca-customs-backend/internal/server/handler"
	"github.com/duca-customs-backend/internal/server/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// Services groups the workflow services the HTTP surface depends on.
type Services struct {
	Auth         service.AuthService
	Declarations service.DeclarationService
	Users        service.UserService
	Importers    service.PartnerService
	Exporters    service.PartnerService
	Audit        service.AuditService
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, tokenManager *tokens.Manager, svcs Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	authHandler := handler.NewAuthHandler(log, svcs.Auth)
	declarationHandler := handler.NewDeclarationHandler(log, svcs.Declarations)
	userHandler := handler.NewUserHandler(log, svcs.Users)
	importerHandler := handler.NewPartnerHandler(log, svcs.Importers)
	exporterHandler := handler.NewPartnerHandler(log, svcs.Exporters)
	auditHandler := handler.NewAuditHandler(log, svcs.Audit)

	setupRouter(log, httpRouter, tokenManager, authHandler, declarationHandler, userHandler, importerHandler, exporterHandler, auditHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
