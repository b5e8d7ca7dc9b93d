// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"permitdesk/internal/delivery/http/middleware"
	"permitdesk/internal/delivery/http/router/handler"
	"permitdesk/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	ApplicationHandler *handler.ApplicationHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	applicationHandler *handler.ApplicationHandler
	authMiddleware     *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		applicationHandler: params.ApplicationHandler,
		authMiddleware:     params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes. Login, callback, refresh, logout and check run without the
	// auth middleware: their whole job is dealing with absent or dying tokens.
	authGroup := e.Group("/auth")
	{
		authGroup.GET("/login", r.authHandler.Login)
		authGroup.GET("/callback", r.authHandler.Callback)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.GET("/check", r.authHandler.Check)
		authGroup.GET("/user", r.authHandler.User, r.authMiddleware.Authenticate)
	}

	// Application routes require authentication.
	apiGroup := e.Group("/api")
	apiGroup.Use(r.authMiddleware.Authenticate)
	{
		apiGroup.POST("/applications", r.applicationHandler.Submit)
		apiGroup.GET("/applications", r.applicationHandler.List)
		apiGroup.GET("/applications/:id", r.applicationHandler.Get)
	}

	// Review routes additionally require the reviewer role.
	reviewGroup := e.Group("/review")
	reviewGroup.Use(r.authMiddleware.Authenticate)
	reviewGroup.Use(r.authMiddleware.RequireRole(entity.RoleReviewer))
	{
		reviewGroup.GET("/applications/:id", r.applicationHandler.Get)
	}
}
