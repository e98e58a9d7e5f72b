package user

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kossahokia/bankcards/internal/apperr"
)

// MemoryStore is an in-memory user store for unit tests and dev mode.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, users: make(map[int64]User)}
}

func (s *MemoryStore) Create(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return User{}, apperr.Validation("user with this username already exists")
		}
	}
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, apperr.NotFound("user not found")
}

func (s *MemoryStore) Update(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []User
	for _, u := range s.users {
		if f.Username != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(f.Username)) {
			continue
		}
		if f.Enabled != nil && u.Enabled != *f.Enabled {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	if f.Offset > 0 {
		if f.Offset >= len(users) {
			return nil, nil
		}
		users = users[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(users) {
		users = users[:f.Limit]
	}
	return users, nil
}
