// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a room lifecycle event.  It doubles as the AMQP message
// type header.
type EventType string

const (
	RoomCreated       EventType = "room.created"
	InvitationCreated EventType = "invitation.created"
	MemberJoined      EventType = "member.joined"
)

// RoomEventsQueue is the durable queue carrying every RoomEvent.
const RoomEventsQueue = "room.events"

// RoomEvent is emitted after a membership change commits.  It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.  Fields that do not apply to a given type
// are left zero and omitted from the JSON body.
type RoomEvent struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	RoomID       uint64    `json:"room_id"`
	RoomName     string    `json:"room_name,omitempty"`
	MovieID      uint64    `json:"movie_id,omitempty"`
	UserID       uint64    `json:"user_id"`
	InviterID    uint64    `json:"inviter_id,omitempty"`
	InvitationID uint64    `json:"invitation_id,omitempty"`
	MemberCount  int       `json:"member_count,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewRoomEvent stamps a fresh event id and the current time.
func NewRoomEvent(t EventType, roomID, userID uint64) RoomEvent {
	return RoomEvent{
		ID:         uuid.NewString(),
		Type:       t,
		RoomID:     roomID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}
