package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/queue"
	"github.com/cargarn1/MovieFan/internal/repository"
)

// Discovery page bounds for ListAvailable.
const (
	DefaultRoomListLimit = 20
	MaxRoomListLimit     = 100
)

// CreateRoomInput carries the fields of a new room.  MaxMembers of 0 means
// model.DefaultRoomMembers.
type CreateRoomInput struct {
	Name        string
	Description string
	MovieID     uint64
	IsPrivate   bool
	MaxMembers  int
}

// RoomService manages the room lifecycle: creation, update, and
// capacity-bounded join and leave.
type RoomService struct {
	store  repository.MembershipStore
	users  UserLookup
	movies MovieCatalog
	events EventPublisher
}

// NewRoomService wires the room lifecycle manager.  events may be nil.
func NewRoomService(store repository.MembershipStore, users UserLookup, movies MovieCatalog, events EventPublisher) *RoomService {
	return &RoomService{store: store, users: users, movies: movies, events: events}
}

func validateName(name string) error {
	if name == "" {
		return repository.Fail(repository.ErrInvalidInput, "Room name is required")
	}
	if len(name) > 200 {
		return repository.Fail(repository.ErrInvalidInput, "Room name must be at most 200 characters")
	}
	return nil
}

func validateCapacity(n int) error {
	if n < model.MinRoomMembers || n > model.MaxRoomMembers {
		return repository.Fail(repository.ErrInvalidInput,
			fmt.Sprintf("max_members must be between %d and %d", model.MinRoomMembers, model.MaxRoomMembers))
	}
	return nil
}

// Create makes a new room with the creator as its first member.
func (s *RoomService) Create(ctx context.Context, creatorID uint64, in CreateRoomInput) (model.Room, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName(name); err != nil {
		return model.Room{}, err
	}
	if in.MaxMembers == 0 {
		in.MaxMembers = model.DefaultRoomMembers
	}
	if err := validateCapacity(in.MaxMembers); err != nil {
		return model.Room{}, err
	}
	if _, err := s.movies.GetByID(ctx, in.MovieID); err != nil {
		return model.Room{}, err
	}
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return model.Room{}, err
	}

	room := model.Room{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		MovieID:     in.MovieID,
		CreatorID:   creatorID,
		IsPrivate:   in.IsPrivate,
		MaxMembers:  in.MaxMembers,
	}
	if err := s.store.CreateRoom(ctx, &room); err != nil {
		return model.Room{}, err
	}

	ev := queue.NewRoomEvent(queue.RoomCreated, room.ID, creatorID)
	ev.RoomName = room.Name
	ev.MovieID = room.MovieID
	emit(ctx, s.events, ev)
	return room, nil
}

// Join adds userID to the room.  A pending invitation for the pair is
// accepted in the same atomic step.
func (s *RoomService) Join(ctx context.Context, roomID, userID uint64) (model.Room, error) {
	room, _, err := s.join(ctx, roomID, userID, 0)
	return room, err
}

// join implements Join.  When invitationID is non-zero the join only
// proceeds if that invitation is still the pending one for (room, user),
// which lets Accept verify and consume the invitation under the room lock.
func (s *RoomService) join(ctx context.Context, roomID, userID, invitationID uint64) (model.Room, uint64, error) {
	if _, err := s.store.Room(ctx, roomID); err != nil {
		return model.Room{}, 0, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return model.Room{}, 0, err
	}

	var (
		joined   model.Room
		accepted uint64
	)
	err := s.store.WithRoomLock(ctx, roomID, func(tx repository.MembershipTx) error {
		room := tx.Room()
		if room.HasMember(userID) {
			return repository.Fail(repository.ErrConflict, repository.ReasonAlreadyMember)
		}
		inv, pending, err := tx.PendingInvitation(userID)
		if err != nil {
			return err
		}
		if invitationID != 0 && (!pending || inv.ID != invitationID) {
			return repository.Fail(repository.ErrInvalidState, repository.ReasonInvitationHandled)
		}
		if room.IsFull() {
			return repository.Fail(repository.ErrConflict, repository.ReasonRoomFull)
		}
		if err := tx.AddMember(userID); err != nil {
			return err
		}
		if pending {
			if err := tx.SetInvitationStatus(inv.ID, model.InvitationAccepted); err != nil {
				return err
			}
			accepted = inv.ID
		}
		joined = tx.Room()
		return nil
	})
	if err != nil {
		return model.Room{}, 0, err
	}

	ev := queue.NewRoomEvent(queue.MemberJoined, roomID, userID)
	ev.RoomName = joined.Name
	ev.MovieID = joined.MovieID
	ev.InvitationID = accepted
	ev.MemberCount = len(joined.MemberIDs)
	emit(ctx, s.events, ev)
	return joined, accepted, nil
}

// Leave removes userID from the room.  The creator can never leave.
func (s *RoomService) Leave(ctx context.Context, roomID, userID uint64) error {
	room, err := s.store.Room(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if room.CreatorID == userID {
		return repository.Fail(repository.ErrForbidden, repository.ReasonCreatorCannotLeave)
	}
	return s.store.WithRoomLock(ctx, roomID, func(tx repository.MembershipTx) error {
		return tx.RemoveMember(userID)
	})
}

// ListAvailable returns public rooms matching filter, minus the rooms
// requesterID already belongs to.  The limit is applied before that
// exclusion, so a page may hold fewer than filter.Limit rooms.
func (s *RoomService) ListAvailable(ctx context.Context, filter model.RoomFilter, requesterID uint64) ([]model.Room, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultRoomListLimit
	case filter.Limit > MaxRoomListLimit:
		filter.Limit = MaxRoomListLimit
	}
	rooms, err := s.store.PublicRooms(ctx, filter)
	if err != nil {
		return nil, err
	}
	if requesterID == 0 {
		return rooms, nil
	}
	out := rooms[:0]
	for _, r := range rooms {
		if !r.HasMember(requesterID) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListForUser returns every room userID is a member of.
func (s *RoomService) ListForUser(ctx context.Context, userID uint64) ([]model.Room, error) {
	return s.store.RoomsForMember(ctx, userID)
}

// Get returns one room.  Private rooms are only visible to members.
func (s *RoomService) Get(ctx context.Context, roomID, requesterID uint64) (model.Room, error) {
	room, err := s.store.Room(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if room.IsPrivate && !room.HasMember(requesterID) {
		return model.Room{}, repository.Fail(repository.ErrForbidden, repository.ReasonPrivateRoom)
	}
	return room, nil
}

// Update applies patch on behalf of the creator.  Reducing capacity below
// the current member count is accepted as is.
func (s *RoomService) Update(ctx context.Context, roomID, requesterID uint64, patch model.RoomPatch) (model.Room, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return model.Room{}, err
		}
		patch.Name = &name
	}
	if patch.MaxMembers != nil {
		if err := validateCapacity(*patch.MaxMembers); err != nil {
			return model.Room{}, err
		}
	}

	var updated model.Room
	err := s.store.WithRoomLock(ctx, roomID, func(tx repository.MembershipTx) error {
		room := tx.Room()
		if room.CreatorID != requesterID {
			return repository.Fail(repository.ErrForbidden, repository.ReasonNotCreator)
		}
		room.Apply(patch)
		if err := tx.UpdateRoom(room); err != nil {
			return err
		}
		updated = tx.Room()
		return nil
	})
	if err != nil {
		return model.Room{}, err
	}
	return updated, nil
}
