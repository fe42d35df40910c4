package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/queue"
	"github.com/cargarn1/MovieFan/internal/repository"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RoomEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.RoomEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store  *repository.MemoryStore
	users  *repository.MemoryUsers
	movies *repository.MemoryMovies
	prefs  *repository.MemoryPreferences
	events *recordingPublisher

	rooms       *RoomService
	invitations *InvitationService
	recs        *RecommendationService
}

const (
	alice uint64 = 1
	bob   uint64 = 2
	carol uint64 = 3
	dave  uint64 = 4

	inception uint64 = 10
	drama     uint64 = 11
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  repository.NewMemoryStore(),
		users:  repository.NewMemoryUsers(),
		movies: repository.NewMemoryMovies(),
		prefs:  repository.NewMemoryPreferences(),
		events: &recordingPublisher{},
	}
	for id, name := range map[uint64]string{alice: "alice", bob: "bob", carol: "carol", dave: "dave"} {
		f.users.Add(model.User{ID: id, Username: name, Email: name + "@example.com"})
	}
	f.movies.Add(model.Movie{ID: inception, Title: "Inception", Genre: "Action, Sci-Fi", Director: "Christopher Nolan", Cast: "Leonardo DiCaprio", Rating: "8.8"})
	f.movies.Add(model.Movie{ID: drama, Title: "The Shawshank Redemption", Genre: "Drama", Director: "Frank Darabont", Cast: "Tim Robbins", Rating: "9.3"})

	f.rooms = NewRoomService(f.store, f.users, f.movies, f.events)
	f.invitations = NewInvitationService(f.store, f.users, f.rooms, f.events)
	f.recs = NewRecommendationService(f.movies, f.prefs, f.store, nil)
	return f
}

func (f *fixture) createRoom(t *testing.T, creator uint64, maxMembers int, private bool) model.Room {
	t.Helper()
	room, err := f.rooms.Create(context.Background(), creator, CreateRoomInput{
		Name:       "Nolan fans",
		MovieID:    inception,
		IsPrivate:  private,
		MaxMembers: maxMembers,
	})
	require.NoError(t, err)
	return room
}

// requireFailure asserts err is a Failure of kind with the given reason.
func requireFailure(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.Equal(t, reason, repository.ReasonOf(err))
}
