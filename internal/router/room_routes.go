package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cargarn1/MovieFan/internal/handler"
	"github.com/cargarn1/MovieFan/internal/middleware"
)

// RegisterRooms registers the room lifecycle and invitation endpoints.  All
// of them require a valid JWT.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, rl echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), rl)

	g.GET("/rooms", h.List)
	g.POST("/rooms", h.Create)
	// Static segment registered alongside :id; echo prefers the static match.
	g.GET("/rooms/mine", h.Mine)
	g.GET("/rooms/:id", h.Get)
	g.PUT("/rooms/:id", h.Update)
	g.POST("/rooms/:id/join", h.Join)
	g.POST("/rooms/:id/leave", h.Leave)
	g.POST("/rooms/:id/invitations", h.Invite)

	g.GET("/invitations", h.PendingInvitations)
	g.POST("/invitations/:id/accept", h.AcceptInvitation)
	g.POST("/invitations/:id/decline", h.DeclineInvitation)
}
