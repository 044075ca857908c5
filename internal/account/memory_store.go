package account

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore builds an in-memory user store for testing.
func NewMemoryStore() Store {
	return &memoryStore{users: make(map[string]User)}
}

func (s *memoryStore) Create(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make([]User, 0, len(s.users))
	for _, u := range s.users {
		existing = append(existing, u)
	}
	if err := uniquenessConflict(existing, user); err != nil {
		return err
	}
	s.users[user.UserID] = user
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *memoryStore) All(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *memoryStore) SetLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastLogin = &at
	s.users[id] = user
	return nil
}

func (s *memoryStore) Counts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, u := range s.users {
		if u.IsActive {
			active++
		}
	}
	return len(s.users), active, nil
}

func (s *memoryStore) Location() string {
	return "memory"
}
