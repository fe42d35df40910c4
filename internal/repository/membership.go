package repository

import (
	"context"

	"github.com/cargarn1/MovieFan/internal/model"
)

// MembershipTx is the set of mutation primitives available while a room is
// locked.  Changes made through it become visible together when the
// enclosing WithRoomLock callback returns nil and are discarded otherwise.
// A MembershipTx must not be used after the callback returns.
type MembershipTx interface {
	// Room returns the locked room, including changes staged so far.
	Room() model.Room
	AddMember(userID uint64) error
	RemoveMember(userID uint64) error
	// UpdateRoom persists the editable fields of room (name, description,
	// privacy, capacity).  Creator and members are not touched.
	UpdateRoom(room model.Room) error
	// PendingInvitation returns the pending invitation for inviteeID on the
	// locked room, if any.
	PendingInvitation(inviteeID uint64) (model.Invitation, bool, error)
	// CreateInvitation stores inv against the locked room and fills in its
	// ID and timestamps.
	CreateInvitation(inv *model.Invitation) error
	SetInvitationStatus(invitationID uint64, status model.InvitationStatus) error
}

// MembershipStore holds rooms, their member sets and invitations.  All
// read-then-write sequences on a room go through WithRoomLock, which
// serializes them per room.
type MembershipStore interface {
	// CreateRoom inserts room with its creator as the only member and fills
	// in ID, MemberIDs and timestamps.
	CreateRoom(ctx context.Context, room *model.Room) error
	Room(ctx context.Context, roomID uint64) (model.Room, error)
	// PublicRooms returns non-private rooms matching filter in id order,
	// truncated to filter.Limit when it is positive.
	PublicRooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error)
	RoomsForMember(ctx context.Context, userID uint64) ([]model.Room, error)
	// MemberMovieIDs lists the distinct movies of the rooms userID belongs to.
	MemberMovieIDs(ctx context.Context, userID uint64) ([]uint64, error)
	Invitation(ctx context.Context, invitationID uint64) (model.Invitation, error)
	PendingInvitationsFor(ctx context.Context, userID uint64) ([]model.Invitation, error)
	// WithRoomLock runs fn while holding the room's serializing guard.  It
	// fails with a NotFound Failure when the room does not exist.
	WithRoomLock(ctx context.Context, roomID uint64, fn func(tx MembershipTx) error) error
}

func roomNotFound() error       { return Fail(ErrNotFound, ReasonRoomNotFound) }
func invitationNotFound() error { return Fail(ErrNotFound, ReasonInvitationNotFound) }
