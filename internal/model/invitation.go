package model

import "time"

// InvitationStatus is the invitation state.  pending is the only state with
// outgoing transitions; accepted and declined are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is a directed request for InviteeID to join RoomID.  At most
// one pending invitation exists per (room, invitee).
type Invitation struct {
	ID        uint64           `json:"id"`
	RoomID    uint64           `json:"room_id"`
	InviterID uint64           `json:"inviter_id"`
	InviteeID uint64           `json:"invitee_id"`
	Status    InvitationStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsPending reports whether the invitation can still transition.
func (i Invitation) IsPending() bool { return i.Status == InvitationPending }
