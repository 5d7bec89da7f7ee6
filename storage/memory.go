package storage

import (
	"context"
	"sync"

	"github.com/TuneScotty/drawit-server/domain"
	"github.com/TuneScotty/drawit-server/game"

	"github.com/google/uuid"
)

// MemoryRepo is the storage backend for local development and tests: same
// surface as PostgresRepo, no database.
type MemoryRepo struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	sessions map[string]game.SessionSnapshot
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:    make(map[string]domain.User),
		sessions: make(map[string]game.SessionSnapshot),
	}
}

func (r *MemoryRepo) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return "", domain.ErrDuplicateUsername
		}
	}
	id := uuid.NewString()
	r.users[id] = domain.User{Id: id, Username: username, PasswordHash: passwordHash}
	return id, nil
}

func (r *MemoryRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *MemoryRepo) PutSession(ctx context.Context, id string, snap game.SessionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = snap
	return nil
}

func (r *MemoryRepo) GetSession(ctx context.Context, id string) (game.SessionSnapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.sessions[id]
	return snap, ok, nil
}

func (r *MemoryRepo) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
