package service

import (
	"context"
	"strings"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/queue"
	"github.com/cargarn1/MovieFan/internal/repository"
)

// InvitationService runs the invite, accept and decline state machine.
// Accepting goes through RoomService so that capacity and the invitation
// transition are decided under the same room lock.
type InvitationService struct {
	store  repository.MembershipStore
	users  UserLookup
	rooms  *RoomService
	events EventPublisher
}

func NewInvitationService(store repository.MembershipStore, users UserLookup, rooms *RoomService, events EventPublisher) *InvitationService {
	return &InvitationService{store: store, users: users, rooms: rooms, events: events}
}

// Invite creates a pending invitation for inviteeID on behalf of inviterID.
func (s *InvitationService) Invite(ctx context.Context, roomID, inviterID, inviteeID uint64, message string) (model.Invitation, error) {
	if _, err := s.store.Room(ctx, roomID); err != nil {
		return model.Invitation{}, err
	}
	if _, err := s.users.GetByID(ctx, inviterID); err != nil {
		return model.Invitation{}, err
	}
	if _, err := s.users.GetByID(ctx, inviteeID); err != nil {
		return model.Invitation{}, err
	}

	inv := model.Invitation{
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    model.InvitationPending,
		Message:   strings.TrimSpace(message),
	}
	err := s.store.WithRoomLock(ctx, roomID, func(tx repository.MembershipTx) error {
		room := tx.Room()
		if !room.HasMember(inviterID) {
			return repository.Fail(repository.ErrForbidden, repository.ReasonInviterNotMember)
		}
		if room.HasMember(inviteeID) {
			return repository.Fail(repository.ErrConflict, repository.ReasonInviteeIsMember)
		}
		if _, pending, err := tx.PendingInvitation(inviteeID); err != nil {
			return err
		} else if pending {
			return repository.Fail(repository.ErrConflict, repository.ReasonInvitationExists)
		}
		return tx.CreateInvitation(&inv)
	})
	if err != nil {
		return model.Invitation{}, err
	}

	ev := queue.NewRoomEvent(queue.InvitationCreated, roomID, inviteeID)
	ev.InviterID = inviterID
	ev.InvitationID = inv.ID
	emit(ctx, s.events, ev)
	return inv, nil
}

// pendingFor loads an invitation and checks that actorID may act on it.
func (s *InvitationService) pendingFor(ctx context.Context, invitationID, actorID uint64) (model.Invitation, error) {
	inv, err := s.store.Invitation(ctx, invitationID)
	if err != nil {
		return model.Invitation{}, err
	}
	if inv.InviteeID != actorID {
		return model.Invitation{}, repository.Fail(repository.ErrForbidden, repository.ReasonNotInvitee)
	}
	if !inv.IsPending() {
		return model.Invitation{}, repository.Fail(repository.ErrInvalidState, repository.ReasonInvitationHandled)
	}
	return inv, nil
}

// Accept joins the invitee to the room.  If the join fails the invitation
// stays pending and the join failure is returned.
func (s *InvitationService) Accept(ctx context.Context, invitationID, actorID uint64) (model.Invitation, model.Room, error) {
	inv, err := s.pendingFor(ctx, invitationID, actorID)
	if err != nil {
		return model.Invitation{}, model.Room{}, err
	}
	room, _, err := s.rooms.join(ctx, inv.RoomID, actorID, inv.ID)
	if err != nil {
		return model.Invitation{}, model.Room{}, err
	}
	inv.Status = model.InvitationAccepted
	return inv, room, nil
}

// Decline marks the invitation declined.  Membership is untouched.
func (s *InvitationService) Decline(ctx context.Context, invitationID, actorID uint64) (model.Invitation, error) {
	inv, err := s.pendingFor(ctx, invitationID, actorID)
	if err != nil {
		return model.Invitation{}, err
	}
	err = s.store.WithRoomLock(ctx, inv.RoomID, func(tx repository.MembershipTx) error {
		current, pending, err := tx.PendingInvitation(actorID)
		if err != nil {
			return err
		}
		if !pending || current.ID != inv.ID {
			return repository.Fail(repository.ErrInvalidState, repository.ReasonInvitationHandled)
		}
		return tx.SetInvitationStatus(inv.ID, model.InvitationDeclined)
	})
	if err != nil {
		return model.Invitation{}, err
	}
	inv.Status = model.InvitationDeclined
	return inv, nil
}

// ListPending returns the pending invitations addressed to userID.
func (s *InvitationService) ListPending(ctx context.Context, userID uint64) ([]model.Invitation, error) {
	return s.store.PendingInvitationsFor(ctx, userID)
}
