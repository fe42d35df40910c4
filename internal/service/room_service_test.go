package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/queue"
	"github.com/cargarn1/MovieFan/internal/repository"
)

func TestCreateRoomEnrollsCreator(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, alice, 0, false)

	assert.Equal(t, []uint64{alice}, room.MemberIDs)
	assert.Equal(t, model.DefaultRoomMembers, room.MaxMembers)
	assert.Equal(t, []queue.EventType{queue.RoomCreated}, f.events.types())
}

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, alice, CreateRoomInput{Name: "x", MovieID: 999})
	requireFailure(t, err, repository.ErrNotFound, repository.ReasonMovieNotFound)

	_, err = f.rooms.Create(ctx, alice, CreateRoomInput{Name: "  ", MovieID: inception})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	for _, n := range []int{1, 201} {
		_, err = f.rooms.Create(ctx, alice, CreateRoomInput{Name: "x", MovieID: inception, MaxMembers: n})
		require.ErrorIs(t, err, repository.ErrInvalidInput, "max_members=%d", n)
	}
}

func TestJoinPreconditionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 2, false)

	_, err := f.rooms.Join(ctx, 999, bob)
	requireFailure(t, err, repository.ErrNotFound, repository.ReasonRoomNotFound)

	_, err = f.rooms.Join(ctx, room.ID, 999)
	requireFailure(t, err, repository.ErrNotFound, repository.ReasonUserNotFound)

	_, err = f.rooms.Join(ctx, room.ID, alice)
	requireFailure(t, err, repository.ErrConflict, repository.ReasonAlreadyMember)

	joined, err := f.rooms.Join(ctx, room.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{alice, bob}, joined.MemberIDs)

	_, err = f.rooms.Join(ctx, room.ID, carol)
	requireFailure(t, err, repository.ErrConflict, repository.ReasonRoomFull)
}

func TestJoinTwiceKeepsMemberCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 10, false)

	_, err := f.rooms.Join(ctx, room.ID, bob)
	require.NoError(t, err)
	_, err = f.rooms.Join(ctx, room.ID, bob)
	requireFailure(t, err, repository.ErrConflict, repository.ReasonAlreadyMember)

	got, err := f.store.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, got.MemberIDs, 2)
}

func TestJoinAcceptsPendingInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 10, false)

	inv, err := f.invitations.Invite(ctx, room.ID, alice, bob, "come watch")
	require.NoError(t, err)

	_, err = f.rooms.Join(ctx, room.ID, bob)
	require.NoError(t, err)

	stored, err := f.store.Invitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationAccepted, stored.Status)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, queue.MemberJoined, last.Type)
	assert.Equal(t, inv.ID, last.InvitationID)
	assert.Equal(t, 2, last.MemberCount)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 10, false)

	err := f.rooms.Leave(ctx, room.ID, alice)
	requireFailure(t, err, repository.ErrForbidden, repository.ReasonCreatorCannotLeave)

	err = f.rooms.Leave(ctx, room.ID, bob)
	requireFailure(t, err, repository.ErrConflict, repository.ReasonNotMember)

	_, err = f.rooms.Join(ctx, room.ID, bob)
	require.NoError(t, err)
	require.NoError(t, f.rooms.Leave(ctx, room.ID, bob))

	got, err := f.store.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{alice}, got.MemberIDs)
}

func TestConcurrentJoinOneFreeSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 2, false)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, uid := range []uint64{bob, carol} {
		wg.Add(1)
		go func(i int, uid uint64) {
			defer wg.Done()
			_, errs[i] = f.rooms.Join(ctx, room.ID, uid)
		}(i, uid)
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case repository.ReasonOf(err) == repository.ReasonRoomFull:
			full++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, full)

	got, err := f.store.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, got.MemberIDs, 2)
}

func TestConcurrentJoinLeaveNeverOvershoots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for id := uint64(100); id < 140; id++ {
		f.users.Add(model.User{ID: id})
	}
	room := f.createRoom(t, alice, 5, false)

	var wg sync.WaitGroup
	for id := uint64(100); id < 140; id++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			if _, err := f.rooms.Join(ctx, room.ID, uid); err == nil && uid%2 == 0 {
				_ = f.rooms.Leave(ctx, room.ID, uid)
			}
		}(id)
	}
	wg.Wait()

	got, err := f.store.Room(ctx, room.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got.MemberIDs), got.MaxMembers)
	assert.True(t, got.HasMember(alice))
}

func TestListAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createRoom(t, alice, 10, false)
	_, err := f.rooms.Create(ctx, bob, CreateRoomInput{Name: "Prison drama club", Description: "Hope", MovieID: drama})
	require.NoError(t, err)
	_, err = f.rooms.Create(ctx, bob, CreateRoomInput{Name: "Secret", MovieID: drama, IsPrivate: true})
	require.NoError(t, err)

	rooms, err := f.rooms.ListAvailable(ctx, model.RoomFilter{}, alice)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Prison drama club", rooms[0].Name)

	rooms, err = f.rooms.ListAvailable(ctx, model.RoomFilter{Search: "HOPE"}, carol)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	rooms, err = f.rooms.ListAvailable(ctx, model.RoomFilter{MovieID: inception}, carol)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, mine.ID, rooms[0].ID)

	// The limit applies before the membership exclusion.
	rooms, err = f.rooms.ListAvailable(ctx, model.RoomFilter{Limit: 1}, alice)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestGetPrivateRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 10, true)

	_, err := f.rooms.Get(ctx, room.ID, bob)
	requireFailure(t, err, repository.ErrForbidden, repository.ReasonPrivateRoom)

	got, err := f.rooms.Get(ctx, room.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.createRoom(t, alice, 10, false)
	_, err := f.rooms.Join(ctx, room.ID, bob)
	require.NoError(t, err)
	_, err = f.rooms.Join(ctx, room.ID, carol)
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.rooms.Update(ctx, room.ID, bob, model.RoomPatch{Name: &name})
	requireFailure(t, err, repository.ErrForbidden, repository.ReasonNotCreator)

	// Shrinking below the member count is accepted.
	capacity := 2
	private := true
	got, err := f.rooms.Update(ctx, room.ID, alice, model.RoomPatch{Name: &name, MaxMembers: &capacity, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 2, got.MaxMembers)
	assert.True(t, got.IsPrivate)
	assert.Len(t, got.MemberIDs, 3)

	_, err = f.rooms.Join(ctx, room.ID, dave)
	requireFailure(t, err, repository.ErrConflict, repository.ReasonRoomFull)

	_, err = f.rooms.Update(ctx, 999, alice, model.RoomPatch{Name: &name})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createRoom(t, alice, 10, false)
	b := f.createRoom(t, bob, 10, true)
	_, err := f.rooms.Join(ctx, b.ID, alice)
	require.NoError(t, err)

	rooms, err := f.rooms.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, a.ID, rooms[0].ID)
	assert.Equal(t, b.ID, rooms[1].ID)
}
