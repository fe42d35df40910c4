package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/service"
)

// RoomHandler exposes the room lifecycle and invitation endpoints.  All
// routes assume JWTAuth ran first.
type RoomHandler struct {
	Rooms       *service.RoomService
	Invitations *service.InvitationService
}

func NewRoomHandler(rooms *service.RoomService, invitations *service.InvitationService) *RoomHandler {
	if rooms == nil || invitations == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Invitations: invitations}
}

type createRoomReq struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	MovieID     uint64 `json:"movie_id" validate:"required"`
	IsPrivate   bool   `json:"is_private"`
	MaxMembers  int    `json:"max_members" validate:"omitempty,min=2,max=200"`
}

type updateRoomReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPrivate   *bool   `json:"is_private"`
	MaxMembers  *int    `json:"max_members" validate:"omitempty,min=2,max=200"`
}

type inviteReq struct {
	InviteeID uint64 `json:"invitee_id" validate:"required"`
	Message   string `json:"message" validate:"max=500"`
}

func roomViews(rooms []model.Room) []model.RoomView {
	out := make([]model.RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.View(false))
	}
	return out
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRoomReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	room, err := h.Rooms.Create(c.Request().Context(), uid, service.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
		MovieID:     req.MovieID,
		IsPrivate:   req.IsPrivate,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, room.View(true))
}

// List handles GET /v1/rooms?movie_id=&search=&limit=.  Rooms the caller
// already belongs to are left out.
func (h *RoomHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	filter := model.RoomFilter{Search: c.QueryParam("search")}
	if raw := c.QueryParam("movie_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		filter.MovieID = id
	}
	limit, ok := queryLimit(c, service.DefaultRoomListLimit, service.MaxRoomListLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
	}
	filter.Limit = limit
	rooms, err := h.Rooms.ListAvailable(c.Request().Context(), filter, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": roomViews(rooms)})
}

// Mine handles GET /v1/rooms/mine.
func (h *RoomHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rooms, err := h.Rooms.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": roomViews(rooms)})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.Get(c.Request().Context(), roomID, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room.View(true))
}

// Update handles PUT /v1/rooms/:id (creator only).
func (h *RoomHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req updateRoomReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	room, err := h.Rooms.Update(c.Request().Context(), roomID, uid, model.RoomPatch{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room.View(true))
}

// Join handles POST /v1/rooms/:id/join.
func (h *RoomHandler) Join(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.Join(c.Request().Context(), roomID, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully joined room", "room": room.View(false)})
}

// Leave handles POST /v1/rooms/:id/leave.
func (h *RoomHandler) Leave(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Leave(c.Request().Context(), roomID, uid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully left room"})
}

// Invite handles POST /v1/rooms/:id/invitations.
func (h *RoomHandler) Invite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req inviteReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	inv, err := h.Invitations.Invite(c.Request().Context(), roomID, uid, req.InviteeID, req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// PendingInvitations handles GET /v1/invitations.
func (h *RoomHandler) PendingInvitations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	invs, err := h.Invitations.ListPending(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitations": invs})
}

// AcceptInvitation handles POST /v1/invitations/:id/accept.
func (h *RoomHandler) AcceptInvitation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	invID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}
	inv, room, err := h.Invitations.Accept(c.Request().Context(), invID, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitation": inv, "room": room.View(false)})
}

// DeclineInvitation handles POST /v1/invitations/:id/decline.
func (h *RoomHandler) DeclineInvitation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	invID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}
	inv, err := h.Invitations.Decline(c.Request().Context(), invID, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitation": inv})
}
