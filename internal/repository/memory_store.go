package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cargarn1/MovieFan/internal/model"
)

// MemoryStore is an in-process MembershipStore used with STORE_DRIVER=memory
// and in tests.  Each room has its own mutex; WithRoomLock stages writes on
// a private copy and applies them under the store lock only when the
// callback succeeds.
type MemoryStore struct {
	mu          sync.RWMutex
	rooms       map[uint64]model.Room
	invitations map[uint64]model.Invitation
	roomLocks   map[uint64]*sync.Mutex
	lastRoomID  uint64
	lastInvID   uint64
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:       make(map[uint64]model.Room),
		invitations: make(map[uint64]model.Invitation),
		roomLocks:   make(map[uint64]*sync.Mutex),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRoomID++
	now := s.now()
	room.ID = s.lastRoomID
	room.MemberIDs = []uint64{room.CreatorID}
	room.CreatedAt, room.UpdatedAt = now, now
	s.rooms[room.ID] = room.Clone()
	s.roomLocks[room.ID] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) Room(_ context.Context, roomID uint64) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return model.Room{}, roomNotFound()
	}
	return r.Clone(), nil
}

// sortedRooms returns clones of the rooms accepted by keep in id order.
// Callers must hold s.mu.
func (s *MemoryStore) sortedRooms(keep func(model.Room) bool) []model.Room {
	out := make([]model.Room, 0)
	for _, r := range s.rooms {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) PublicRooms(_ context.Context, f model.RoomFilter) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := s.sortedRooms(func(r model.Room) bool {
		if r.IsPrivate {
			return false
		}
		if f.MovieID != 0 && r.MovieID != f.MovieID {
			return false
		}
		if f.Search != "" && !model.ContainsFold(r.Name, f.Search) && !model.ContainsFold(r.Description, f.Search) {
			return false
		}
		return true
	})
	if f.Limit > 0 && len(rooms) > f.Limit {
		rooms = rooms[:f.Limit]
	}
	return rooms, nil
}

func (s *MemoryStore) RoomsForMember(_ context.Context, userID uint64) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedRooms(func(r model.Room) bool { return r.HasMember(userID) }), nil
}

func (s *MemoryStore) MemberMovieIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rooms, err := s.RoomsForMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]bool, len(rooms))
	ids := make([]uint64, 0, len(rooms))
	for _, r := range rooms {
		if !seen[r.MovieID] {
			seen[r.MovieID] = true
			ids = append(ids, r.MovieID)
		}
	}
	return ids, nil
}

func (s *MemoryStore) Invitation(_ context.Context, invitationID uint64) (model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[invitationID]
	if !ok {
		return model.Invitation{}, invitationNotFound()
	}
	return inv, nil
}

func (s *MemoryStore) PendingInvitationsFor(_ context.Context, userID uint64) ([]model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Invitation, 0)
	for _, inv := range s.invitations {
		if inv.InviteeID == userID && inv.IsPending() {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) WithRoomLock(_ context.Context, roomID uint64, fn func(tx MembershipTx) error) error {
	s.mu.RLock()
	lock, ok := s.roomLocks[roomID]
	s.mu.RUnlock()
	if !ok {
		return roomNotFound()
	}
	lock.Lock()
	defer lock.Unlock()

	room, err := s.Room(context.Background(), roomID)
	if err != nil {
		return err
	}
	tx := &memoryTx{store: s, room: room, statuses: make(map[uint64]model.InvitationStatus)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memoryTx stages changes to one locked room.
type memoryTx struct {
	store       *MemoryStore
	room        model.Room
	roomChanged bool
	created     []model.Invitation
	statuses    map[uint64]model.InvitationStatus
}

func (tx *memoryTx) Room() model.Room { return tx.room.Clone() }

func (tx *memoryTx) AddMember(userID uint64) error {
	if tx.room.HasMember(userID) {
		return Fail(ErrConflict, ReasonAlreadyMember)
	}
	tx.room.MemberIDs = append(tx.room.MemberIDs, userID)
	tx.roomChanged = true
	return nil
}

func (tx *memoryTx) RemoveMember(userID uint64) error {
	for i, id := range tx.room.MemberIDs {
		if id == userID {
			tx.room.MemberIDs = append(tx.room.MemberIDs[:i:i], tx.room.MemberIDs[i+1:]...)
			tx.roomChanged = true
			return nil
		}
	}
	return Fail(ErrConflict, ReasonNotMember)
}

func (tx *memoryTx) UpdateRoom(room model.Room) error {
	tx.room.Name = room.Name
	tx.room.Description = room.Description
	tx.room.IsPrivate = room.IsPrivate
	tx.room.MaxMembers = room.MaxMembers
	tx.roomChanged = true
	return nil
}

func (tx *memoryTx) PendingInvitation(inviteeID uint64) (model.Invitation, bool, error) {
	for _, inv := range tx.created {
		if inv.InviteeID == inviteeID && tx.statusOf(inv) == model.InvitationPending {
			return inv, true, nil
		}
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	var found model.Invitation
	ok := false
	for _, inv := range tx.store.invitations {
		if inv.RoomID != tx.room.ID || inv.InviteeID != inviteeID || tx.statusOf(inv) != model.InvitationPending {
			continue
		}
		if !ok || inv.ID < found.ID {
			found, ok = inv, true
		}
	}
	return found, ok, nil
}

func (tx *memoryTx) statusOf(inv model.Invitation) model.InvitationStatus {
	if st, ok := tx.statuses[inv.ID]; ok {
		return st
	}
	return inv.Status
}

func (tx *memoryTx) CreateInvitation(inv *model.Invitation) error {
	if _, exists, _ := tx.PendingInvitation(inv.InviteeID); exists && inv.Status == model.InvitationPending {
		return Fail(ErrConflict, ReasonInvitationExists)
	}
	tx.store.mu.Lock()
	tx.store.lastInvID++
	inv.ID = tx.store.lastInvID
	tx.store.mu.Unlock()
	now := tx.store.now()
	inv.RoomID = tx.room.ID
	inv.CreatedAt, inv.UpdatedAt = now, now
	tx.created = append(tx.created, *inv)
	return nil
}

func (tx *memoryTx) SetInvitationStatus(invitationID uint64, status model.InvitationStatus) error {
	for _, inv := range tx.created {
		if inv.ID == invitationID {
			tx.statuses[invitationID] = status
			return nil
		}
	}
	tx.store.mu.RLock()
	inv, ok := tx.store.invitations[invitationID]
	tx.store.mu.RUnlock()
	if !ok || inv.RoomID != tx.room.ID {
		return invitationNotFound()
	}
	tx.statuses[invitationID] = status
	return nil
}

// commit applies every staged change at once.
func (tx *memoryTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if tx.roomChanged {
		tx.room.UpdatedAt = now
		s.rooms[tx.room.ID] = tx.room.Clone()
	}
	for _, inv := range tx.created {
		s.invitations[inv.ID] = inv
	}
	for id, st := range tx.statuses {
		inv := s.invitations[id]
		inv.Status = st
		inv.UpdatedAt = now
		s.invitations[id] = inv
	}
}
