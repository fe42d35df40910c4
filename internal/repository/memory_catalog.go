package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/utils"
)

// MemoryUsers is the in-process counterpart of UserRepo.
type MemoryUsers struct {
	mu     sync.RWMutex
	users  map[uint64]model.User
	lastID uint64
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[uint64]model.User)}
}

func (m *MemoryUsers) Create(_ context.Context, username, email, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return 0, ErrUserExists
		}
	}
	m.lastID++
	now := time.Now().UTC()
	m.users[m.lastID] = model.User{
		ID: m.lastID, Username: username, Email: email, PasswordHash: hash,
		CreatedAt: now, UpdatedAt: now,
	}
	return m.lastID, nil
}

// Add registers a user with an explicit id.  Used for seeding.
func (m *MemoryUsers) Add(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	if u.ID > m.lastID {
		m.lastID = u.ID
	}
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, Fail(ErrNotFound, ReasonUserNotFound)
}

func (m *MemoryUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, Fail(ErrNotFound, ReasonUserNotFound)
	}
	return u, nil
}

// MemoryMovies is a fixed in-process catalog.
type MemoryMovies struct {
	mu     sync.RWMutex
	movies map[uint64]model.Movie
}

func NewMemoryMovies(movies ...model.Movie) *MemoryMovies {
	m := &MemoryMovies{movies: make(map[uint64]model.Movie, len(movies))}
	for _, mv := range movies {
		m.movies[mv.ID] = mv
	}
	return m
}

func (m *MemoryMovies) Add(mv model.Movie) {
	m.mu.Lock()
	m.movies[mv.ID] = mv
	m.mu.Unlock()
}

func (m *MemoryMovies) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mv, ok := m.movies[id]
	if !ok {
		return model.Movie{}, Fail(ErrNotFound, ReasonMovieNotFound)
	}
	return mv, nil
}

func (m *MemoryMovies) All(_ context.Context) ([]model.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Movie, 0, len(m.movies))
	for _, mv := range m.movies {
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryPreferences is the in-process counterpart of PreferencesRepo.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[uint64]model.Preferences
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[uint64]model.Preferences)}
}

func (m *MemoryPreferences) Get(_ context.Context, userID uint64) (model.Preferences, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	return p, ok, nil
}

func (m *MemoryPreferences) Upsert(_ context.Context, prefs model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if old, ok := m.prefs[prefs.UserID]; ok {
		prefs.CreatedAt = old.CreatedAt
	} else {
		prefs.CreatedAt = now
	}
	prefs.UpdatedAt = now
	m.prefs[prefs.UserID] = prefs
	return nil
}
