package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cargarn1/MovieFan/internal/handler"
	"github.com/cargarn1/MovieFan/internal/middleware"
)

// RegisterRecommendations registers recommendation and preference
// endpoints.  Similar-movie lists do not depend on the caller, so they go
// through the shared response cache.
func RegisterRecommendations(e *echo.Echo, h *handler.RecommendationHandler, jwtSecret string, rl, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), rl)

	g.GET("/recommendations", h.Recommend)
	g.GET("/movies/:id/similar", h.Similar, cache)
	g.GET("/preferences", h.GetPreferences)
	g.PUT("/preferences", h.UpdatePreferences)
}
