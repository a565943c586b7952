package store

import (
	"context"
	"sync"

	"github.com/eduworld/portal/internal/model"
)

// MemoryUserStore keeps users in process memory.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{byEmail: make(map[string]model.User)}
}

// Create validates and inserts user.
func (s *MemoryUserStore) Create(ctx context.Context, user *model.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := Validate(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrDuplicateKey
	}
	s.byEmail[user.Email] = *user
	return nil
}

// FindByEmail looks a user up by email.
func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}
