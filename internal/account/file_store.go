package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const indexFileName = "users_index.json"

// FileStore keeps the whole index in memory and mirrors it to a single JSON
// file. Every mutation rewrites the file in full, which is fine at the scale
// this service runs at but does not scale past a few thousand users.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	path   string
	users  map[string]User
	logger *slog.Logger
}

// NewFileStore opens (or creates) the users directory and loads the index.
// An unreadable or corrupt index file is logged and replaced with an empty
// one rather than treated as fatal; registration availability wins over
// strict recovery here.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create users directory: %w", err)
	}

	s := &FileStore{
		dir:    dir,
		path:   filepath.Join(dir, indexFileName),
		users:  make(map[string]User),
		logger: logger,
	}
	s.load()
	return s, nil
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("load user index", "path", s.path, "error", err)
		}
		return
	}
	var users map[string]User
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Error("parse user index, starting empty", "path", s.path, "error", err)
		return
	}
	if users == nil {
		// A literal "null" index parses fine but must not replace the
		// empty map.
		s.logger.Warn("user index is null, starting empty", "path", s.path)
		return
	}
	s.users = users
}

// save rewrites the index file. Callers must hold s.mu.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user index: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write user index: %w", err)
	}
	return nil
}

// Create checks the three uniqueness keys and inserts the user as one
// critical section. If the write to disk fails the in-memory insert is
// rolled back so memory and file never diverge.
func (s *FileStore) Create(_ context.Context, user User) error {
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
	if err := s.save(); err != nil {
		delete(s.users, user.UserID)
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *FileStore) All(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *FileStore) SetLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	prev := user.LastLogin
	user.LastLogin = &at
	s.users[id] = user
	if err := s.save(); err != nil {
		user.LastLogin = prev
		s.users[id] = user
		return err
	}
	return nil
}

func (s *FileStore) Counts(_ context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := 0
	for _, u := range s.users {
		if u.IsActive {
			active++
		}
	}
	return len(s.users), active, nil
}

// Location returns the users directory holding the index file.
func (s *FileStore) Location() string {
	return s.dir
}
