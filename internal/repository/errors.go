// Package repository defines the error kinds shared by the data access
// layer, the services and the HTTP handlers.  Every expected failure of a
// membership, invitation or lookup operation is reported as a *Failure
// carrying one of these kinds and a human readable reason.  Handlers
// translate the kind into a status code with errors.Is.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a room, user, movie or invitation does not
// exist.  Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation collides with existing state:
// already a member, room full, duplicate pending invitation.  Handlers
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation they are
// not allowed to perform, such as a non-creator updating a room or the
// creator leaving it.  Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when an invitation is no longer pending.
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidInput is returned for malformed input that slipped past the
// boundary validation (bad capacity, empty name).
var ErrInvalidInput = errors.New("invalid input")

// Failure is an expected, recoverable failure: a kind plus the reason shown
// to the caller.
type Failure struct {
	Kind   error
	Reason string
}

func (f *Failure) Error() string { return fmt.Sprintf("%s: %s", f.Kind, f.Reason) }

// Unwrap exposes the kind so errors.Is(err, ErrConflict) works.
func (f *Failure) Unwrap() error { return f.Kind }

// Fail builds a *Failure.
func Fail(kind error, reason string) error {
	return &Failure{Kind: kind, Reason: reason}
}

// ReasonOf returns the caller-facing reason of a Failure, or "" when err is
// not one.
func ReasonOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}

// Reasons reported by the membership and invitation operations.
const (
	ReasonRoomNotFound       = "Room not found"
	ReasonUserNotFound       = "User not found"
	ReasonMovieNotFound      = "Movie not found"
	ReasonInvitationNotFound = "Invitation not found"
	ReasonAlreadyMember      = "Already a member of this room"
	ReasonRoomFull           = "Room is full"
	ReasonCreatorCannotLeave = "Room creator cannot leave. Transfer ownership or delete room."
	ReasonNotMember          = "Not a member of this room"
	ReasonInviterNotMember   = "You must be a member to invite others"
	ReasonInviteeIsMember    = "User is already a member"
	ReasonInvitationExists   = "Invitation already sent"
	ReasonNotInvitee         = "Invitation belongs to another user"
	ReasonInvitationHandled  = "Invitation already processed"
	ReasonNotCreator         = "Only room creator can update"
	ReasonPrivateRoom        = "Access denied to private room"
)
