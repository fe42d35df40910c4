package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo router and groups

	"github.com/cargarn1/MovieFan/internal/handler"    // endpoint handlers
	"github.com/cargarn1/MovieFan/internal/middleware" // JWT auth and response cache
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the token-issuing endpoints under /v1/auth and the
// authenticated /v1/me.  rl is the shared rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rl)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), rl)
	auth.GET("/me", a.Me)
}
