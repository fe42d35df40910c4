// Package service implements the room membership state machine, the
// invitation workflow and the recommendation engine on top of the
// repository layer.  Every expected failure is returned as a
// *repository.Failure so the HTTP layer can map its kind to a status code.
package service

import (
	"context"

	"github.com/cargarn1/MovieFan/internal/logging"
	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/queue"
)

// UserLookup resolves user ids.  GetByID fails with a NotFound failure for
// unknown users.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// MovieCatalog is the read-only movie store.
type MovieCatalog interface {
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
	// All returns the catalog in a stable iteration order.
	All(ctx context.Context) ([]model.Movie, error)
}

// PreferencesStore persists user preferences.
type PreferencesStore interface {
	Get(ctx context.Context, userID uint64) (model.Preferences, bool, error)
	Upsert(ctx context.Context, prefs model.Preferences) error
}

// EventPublisher accepts room events for asynchronous delivery.  It must
// not block on the network.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RoomEvent) error
}

// emit hands ev to p.  Publication failures are logged and never fail the
// operation that produced the event.
func emit(ctx context.Context, p EventPublisher, ev queue.RoomEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		logging.Warn().Err(err).
			Str("type", string(ev.Type)).
			Uint64("room_id", ev.RoomID).
			Uint64("user_id", ev.UserID).
			Msg("room event not published")
	}
}
